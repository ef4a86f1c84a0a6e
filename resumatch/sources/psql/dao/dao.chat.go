package dao

import (
	"context"
	"errors"
	"time"

	"resumatch/resumatch/sources/psql/models"
	"resumatch/resumatch/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatMessageDAO is the session store: durable sessions plus their ordered
// messages. It owns the per-session serialization required to keep message
// timestamps non-decreasing under concurrent turns — writers lock the
// session row for the duration of the append transaction.
type ChatMessageDAO struct {
	DB *gorm.DB
}

func NewChatMessageDAO(db *gorm.DB) *ChatMessageDAO {
	return &ChatMessageDAO{DB: db}
}

// SavedMessage is the write-side shape of one message.
type SavedMessage struct {
	Role          string
	Message       string
	ResolvedQuery string
	Entities      []types.Entity
}

// CreateSession creates a session row. With an empty id a fresh uuid is
// generated. Creating an id that already exists is a no-op.
func (dao *ChatMessageDAO) CreateSession(ctx context.Context, sessionID string, metadata map[string]interface{}) (string, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	now := time.Now().UTC()
	session := models.ChatSession{
		SessionID:    sessionID,
		CreatedAt:    now,
		LastActivity: now,
		Metadata:     models.JSONMap(metadata),
	}
	err := dao.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&session).Error
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (dao *ChatMessageDAO) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := dao.DB.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count > 0, err
}

// lockSession loads the session row under a row-level lock, creating it if
// missing. sqlite (tests) has no FOR UPDATE; its writes are serialized by
// the single-writer file lock instead.
func lockSession(tx *gorm.DB, sessionID string) (*models.ChatSession, error) {
	q := tx.Where("session_id = ?", sessionID)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var session models.ChatSession
	err := q.First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now().UTC()
		session = models.ChatSession{
			SessionID:    sessionID,
			CreatedAt:    now,
			LastActivity: now,
			Metadata:     models.JSONMap{},
		}
		if err := tx.Create(&session).Error; err != nil {
			return nil, err
		}
		return &session, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func appendMessage(tx *gorm.DB, sessionID string, msg SavedMessage) (*models.ChatMessage, error) {
	entities := msg.Entities
	if entities == nil {
		entities = []types.Entity{}
	}
	record := models.ChatMessage{
		SessionID:         sessionID,
		Role:              msg.Role,
		Message:           msg.Message,
		ResolvedQuery:     msg.ResolvedQuery,
		EntitiesMentioned: models.EntityList(entities),
		Timestamp:         time.Now().UTC(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveMessage appends one message, auto-creating the session when absent
// and touching last_activity, all in a single transaction.
func (dao *ChatMessageDAO) SaveMessage(ctx context.Context, sessionID string, msg SavedMessage) (*models.ChatMessage, error) {
	var saved *models.ChatMessage
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if saved, err = appendMessage(tx, sessionID, msg); err != nil {
			return err
		}
		return tx.Model(session).Update("last_activity", time.Now().UTC()).Error
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// SaveTurn persists a full user+assistant turn atomically: either both
// messages commit or neither does, so a failed or cancelled turn leaves
// the store untouched.
func (dao *ChatMessageDAO) SaveTurn(ctx context.Context, sessionID string, user, assistant SavedMessage) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		if _, err := appendMessage(tx, sessionID, user); err != nil {
			return err
		}
		if _, err := appendMessage(tx, sessionID, assistant); err != nil {
			return err
		}
		return tx.Model(session).Update("last_activity", time.Now().UTC()).Error
	})
}

// GetSessionHistory returns a session's messages in chronological order.
// With limit > 0 it returns the most recent N messages, still ascending.
// Unknown sessions yield an empty history, not an error.
func (dao *ChatMessageDAO) GetSessionHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	q := dao.DB.WithContext(ctx).Where("session_id = ?", sessionID)

	var messages []models.ChatMessage
	if limit > 0 {
		if err := q.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
			return nil, err
		}
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
		return messages, nil
	}
	if err := q.Order("timestamp ASC").Order("id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ContextWindow returns the last n messages shaped for the resolver
// prompt: role, text and previously persisted entities, oldest first.
func (dao *ChatMessageDAO) ContextWindow(ctx context.Context, sessionID string, n int) ([]types.HistoryMessage, error) {
	messages, err := dao.GetSessionHistory(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}
	window := make([]types.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		window = append(window, types.HistoryMessage{
			Role:      msg.Role,
			Message:   msg.Message,
			Entities:  []types.Entity(msg.EntitiesMentioned),
			Timestamp: msg.Timestamp.Format(time.RFC3339),
		})
	}
	return window, nil
}

// GetSessionHistoryStrict is GetSessionHistory for callers that require a
// pre-existing session; it reports ErrSessionNotFound for unknown ids.
func (dao *ChatMessageDAO) GetSessionHistoryStrict(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	exists, err := dao.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSessionNotFound
	}
	return dao.GetSessionHistory(ctx, sessionID, 0)
}

// ClearSession deletes all of a session's messages but keeps the session
// row. Unknown ids report ErrSessionNotFound.
func (dao *ChatMessageDAO) ClearSession(ctx context.Context, sessionID string) error {
	exists, err := dao.SessionExists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return dao.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.ChatMessage{}).Error
}
