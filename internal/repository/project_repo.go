package repository

import (
	"strings"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

// ProjectFilter restricts a listing; All ignores IDs
type ProjectFilter struct {
	All     bool
	IDs     []int64
	Keyword string
	Offset  int
	Limit   int // 0 means no limit
}

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id int64) (*model.Project, error)
	FindByNameKey(nameKey string) (*model.Project, error)
	List(filter ProjectFilter) ([]*model.Project, int64, error)
	Update(project *model.Project) error
	SetConnection(projectID int64, connectionID *int64) error
	Delete(id int64) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return wrapWrite(err, "create project failed")
	}
	return nil
}

func (r *projectRepository) FindByID(id int64) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, wrapFind(err, "query project failed")
	}
	return &project, nil
}

func (r *projectRepository) FindByNameKey(nameKey string) (*model.Project, error) {
	var project model.Project
	if err := r.db.Where("name_key = ?", nameKey).First(&project).Error; err != nil {
		return nil, wrapFind(err, "query project failed")
	}
	return &project, nil
}

// List returns projects newest first
func (r *projectRepository) List(filter ProjectFilter) ([]*model.Project, int64, error) {
	projects := make([]*model.Project, 0)
	var total int64

	if !filter.All && len(filter.IDs) == 0 {
		return projects, 0, nil
	}

	query := r.db.Model(&model.Project{})
	if !filter.All {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Keyword != "" {
		kw := likePattern(strings.ToLower(filter.Keyword))
		query = query.Where("name_key LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "count projects failed", err)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list projects failed", err)
	}

	return projects, total, nil
}

func (r *projectRepository) Update(project *model.Project) error {
	if err := r.db.Save(project).Error; err != nil {
		return wrapWrite(err, "update project failed")
	}
	return nil
}

func (r *projectRepository) SetConnection(projectID int64, connectionID *int64) error {
	err := r.db.Model(&model.Project{}).Where("id = ?", projectID).Update("connection_id", connectionID).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update project connection failed", err)
	}
	return nil
}

// Delete removes the project and everything scoped to it in one transaction
func (r *projectRepository) Delete(id int64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		chatIDs := tx.Model(&model.Chat{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("chat_id IN (?)", chatIDs).Delete(&model.Message{}).Error; err != nil {
			return err
		}

		scoped := []interface{}{
			&model.Chat{},
			&model.ProjectMember{},
			&model.Note{},
			&model.SQLExample{},
			&model.DatabaseConnection{},
			&model.TableMetadata{},
		}
		for _, m := range scoped {
			if err := tx.Where("project_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&model.User{}).Where("last_project_id = ?", id).
			Update("last_project_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return wrapFind(err, "delete project failed")
	}
	return nil
}
