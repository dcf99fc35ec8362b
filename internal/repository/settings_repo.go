package repository

import (
	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type SettingsRepository interface {
	FindByUser(userID int64) (*model.AppSettings, error)
	Save(settings *model.AppSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) FindByUser(userID int64) (*model.AppSettings, error) {
	var settings model.AppSettings
	if err := r.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, wrapFind(err, "query settings failed")
	}
	return &settings, nil
}

// Save inserts the row on first use and overwrites it afterwards
func (r *settingsRepository) Save(settings *model.AppSettings) error {
	if settings.ID == 0 {
		existing, err := r.FindByUser(settings.UserID)
		if err != nil && err != pkgErrors.ErrRecordNotFound {
			return err
		}
		if existing != nil {
			settings.ID = existing.ID
			settings.CreatedAt = existing.CreatedAt
		}
	}
	if err := r.db.Save(settings).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "save settings failed", err)
	}
	return nil
}
