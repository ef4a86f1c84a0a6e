package dao

import (
	"context"
	"time"

	"resumatch/resumatch/sources/psql/models"

	"gorm.io/gorm"
)

// SearchHistoryDAO records which tool every query was routed to.
type SearchHistoryDAO struct {
	DB *gorm.DB
}

func NewSearchHistoryDAO(db *gorm.DB) *SearchHistoryDAO {
	return &SearchHistoryDAO{DB: db}
}

func (dao *SearchHistoryDAO) LogQuery(ctx context.Context, query, tool, response string) error {
	record := models.SearchHistory{
		Query:        query,
		ToolDetected: tool,
		Response:     response,
		Timestamp:    time.Now().UTC(),
	}
	return dao.DB.WithContext(ctx).Create(&record).Error
}
