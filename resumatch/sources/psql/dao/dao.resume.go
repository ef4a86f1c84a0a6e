package dao

import (
	"context"
	"time"

	"resumatch/resumatch/sources/psql/models"
	"resumatch/resumatch/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResumeDAO struct {
	DB *gorm.DB
}

func NewResumeDAO(db *gorm.DB) *ResumeDAO {
	return &ResumeDAO{DB: db}
}

// SaveMetadata upserts a candidate record keyed by candidate name.
func (dao *ResumeDAO) SaveMetadata(ctx context.Context, name, source string, resume types.Resume) error {
	record := models.ResumeMetadata{
		CandidateName: name,
		SourceFile:    source,
		ParsedJSON:    models.ResumeJSON(resume),
		CreatedAt:     time.Now().UTC(),
	}
	return dao.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"source_file", "parsed_json", "created_at"}),
		}).
		Create(&record).Error
}

// GetAllResumes returns candidate records, most recently stored first.
// That order is the matcher's tie-break: when two candidate names both
// satisfy a matching rule, the most recently added candidate wins.
func (dao *ResumeDAO) GetAllResumes(ctx context.Context) ([]models.ResumeMetadata, error) {
	var records []models.ResumeMetadata
	err := dao.DB.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&records).Error
	return records, err
}

// CandidateNames returns the known candidate display names, in the same
// deterministic order as GetAllResumes.
func (dao *ResumeDAO) CandidateNames(ctx context.Context) ([]string, error) {
	records, err := dao.GetAllResumes(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r.CandidateName != "" {
			names = append(names, r.CandidateName)
		}
	}
	return names, nil
}

func (dao *ResumeDAO) Count(ctx context.Context) (int64, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&models.ResumeMetadata{}).Count(&count).Error
	return count, err
}

// Clear removes every stored candidate record.
func (dao *ResumeDAO) Clear(ctx context.Context) error {
	return dao.DB.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.ResumeMetadata{}).Error
}
