package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"resumatch/resumatch/types"
)

// ResumeJSON stores the parsed resume structure as a JSON column.
type ResumeJSON types.Resume

func (r ResumeJSON) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ResumeJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = ResumeJSON{}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported resume column type %T", value)
	}
}

// ResumeMetadata is one stored candidate record.
type ResumeMetadata struct {
	ID            uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	CandidateName string     `json:"candidate_name" gorm:"type:varchar(255);uniqueIndex"`
	SourceFile    string     `json:"source_file" gorm:"type:varchar(512)"`
	ParsedJSON    ResumeJSON `json:"parsed_json" gorm:"type:jsonb"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SearchHistory is the audit log of routed queries.
type SearchHistory struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Query        string    `json:"query" gorm:"type:text;not null"`
	ToolDetected string    `json:"tool_detected" gorm:"type:varchar(50)"`
	Response     string    `json:"response" gorm:"type:text"`
	Timestamp    time.Time `json:"timestamp"`
}
