package repository

import (
	"slices"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type MessageRepository interface {
	Create(message *model.Message) error
	// ListByChat returns messages oldest first
	ListByChat(chatID int64) ([]*model.Message, error)
	// Last returns the newest limit messages, oldest first
	Last(chatID int64, limit int) ([]*model.Message, error)
	Delete(id int64) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "create message failed", err)
	}
	return nil
}

func (r *messageRepository) ListByChat(chatID int64) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.Where("chat_id = ?", chatID).Order("created_at ASC").Order("id ASC").Find(&messages).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list messages failed", err)
	}
	return messages, nil
}

func (r *messageRepository) Last(chatID int64, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	if limit <= 0 {
		return messages, nil
	}
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list messages failed", err)
	}
	slices.Reverse(messages)
	return messages, nil
}

func (r *messageRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.Message{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "delete message failed", err)
	}
	return nil
}
