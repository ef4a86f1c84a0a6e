package models

import (
	"time"
)

// ChatSession is a durable conversation thread.
type ChatSession struct {
	SessionID    string    `json:"session_id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
	LastActivity time.Time `json:"last_activity" gorm:"not null"`
	Metadata     JSONMap   `json:"metadata" gorm:"type:jsonb"`
}

// ChatMessage is one turn half within a session. Messages are append-only;
// clear deletes them in bulk but keeps the session row.
type ChatMessage struct {
	ID                uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID         string      `json:"session_id" gorm:"type:varchar(36);not null;index"`
	Session           ChatSession `json:"-" gorm:"foreignKey:SessionID;references:SessionID;constraint:OnDelete:CASCADE"`
	Role              string      `json:"role" gorm:"type:varchar(20);not null"`
	Message           string      `json:"message" gorm:"type:text;not null"`
	ResolvedQuery     string      `json:"resolved_query,omitempty" gorm:"type:text"`
	EntitiesMentioned EntityList  `json:"entities_mentioned" gorm:"type:jsonb"`
	Timestamp         time.Time   `json:"timestamp" gorm:"not null;index"`
}
