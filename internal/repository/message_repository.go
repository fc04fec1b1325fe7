package repository

import (
	"gorm.io/gorm"

	"newsrag/internal/model"
)

// MessageRepository is the durable archive of chat messages, written by the
// persist worker and read when the Redis history log has expired.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// ListBySessionID returns the last limit messages of the session in
// chronological order. A limit of 0 or less returns all of them.
func (r *MessageRepository) ListBySessionID(sessionID string, limit int) ([]model.Message, error) {
	query := r.db.Where("session_id = ?", sessionID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []model.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	// reverse back to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) DeleteBySessionID(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&model.Message{}).Error
}
