package repository

import (
	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type NoteRepository interface {
	Create(note *model.Note) error
	FindByID(id int64) (*model.Note, error)
	ListByOwner(projectID, userID int64) ([]*model.Note, error)
	FindByIDs(projectID, userID int64, ids []int64) ([]*model.Note, error)
	Update(note *model.Note) error
	Delete(id int64) error
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(note *model.Note) error {
	if err := r.db.Create(note).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "create note failed", err)
	}
	return nil
}

func (r *noteRepository) FindByID(id int64) (*model.Note, error) {
	var note model.Note
	if err := r.db.First(&note, id).Error; err != nil {
		return nil, wrapFind(err, "query note failed")
	}
	return &note, nil
}

func (r *noteRepository) ListByOwner(projectID, userID int64) ([]*model.Note, error) {
	var notes []*model.Note
	err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("updated_at DESC").Order("id DESC").Find(&notes).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list notes failed", err)
	}
	return notes, nil
}

// FindByIDs only returns notes owned by userID in projectID
func (r *noteRepository) FindByIDs(projectID, userID int64, ids []int64) ([]*model.Note, error) {
	var notes []*model.Note
	if len(ids) == 0 {
		return notes, nil
	}
	err := r.db.Where("project_id = ? AND user_id = ? AND id IN ?", projectID, userID, ids).
		Order("id ASC").Find(&notes).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "query notes failed", err)
	}
	return notes, nil
}

func (r *noteRepository) Update(note *model.Note) error {
	if err := r.db.Save(note).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update note failed", err)
	}
	return nil
}

func (r *noteRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.Note{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "delete note failed", err)
	}
	return nil
}
