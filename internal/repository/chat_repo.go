package repository

import (
	"time"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type ChatRepository interface {
	Create(chat *model.Chat) error
	FindByID(id int64) (*model.Chat, error)
	// List returns chats of a project, only userID's when userID is non-nil, most recently active first
	List(projectID int64, userID *int64) ([]*model.Chat, error)
	Update(chat *model.Chat) error
	Touch(id int64) error
	Delete(id int64) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return wrapWrite(err, "create chat failed")
	}
	return nil
}

func (r *chatRepository) FindByID(id int64) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.First(&chat, id).Error; err != nil {
		return nil, wrapFind(err, "query chat failed")
	}
	return &chat, nil
}

func (r *chatRepository) List(projectID int64, userID *int64) ([]*model.Chat, error) {
	var chats []*model.Chat
	query := r.db.Where("project_id = ?", projectID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Order("updated_at DESC").Order("id DESC").Find(&chats).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list chats failed", err)
	}
	return chats, nil
}

func (r *chatRepository) Update(chat *model.Chat) error {
	if err := r.db.Save(chat).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update chat failed", err)
	}
	return nil
}

// Touch bumps updated_at so the chat sorts first
func (r *chatRepository) Touch(id int64) error {
	if err := r.db.Model(&model.Chat{}).Where("id = ?", id).Update("updated_at", time.Now()).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update chat failed", err)
	}
	return nil
}

// Delete removes the chat with its messages
func (r *chatRepository) Delete(id int64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Chat{}, id).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "delete chat failed", err)
	}
	return nil
}
