package repository

import (
	"strings"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type SQLExampleRepository interface {
	Create(example *model.SQLExample) error
	BatchCreate(examples []*model.SQLExample) error
	FindByID(id int64) (*model.SQLExample, error)
	List(projectID int64, offset, limit int, keyword string) ([]*model.SQLExample, int64, error)
	ListAll(projectID int64) ([]*model.SQLExample, error)
	Update(example *model.SQLExample) error
	Delete(id int64) error
}

type sqlExampleRepository struct {
	db *gorm.DB
}

func NewSQLExampleRepository(db *gorm.DB) SQLExampleRepository {
	return &sqlExampleRepository{db: db}
}

func (r *sqlExampleRepository) Create(example *model.SQLExample) error {
	if err := r.db.Create(example).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "create sql example failed", err)
	}
	return nil
}

func (r *sqlExampleRepository) BatchCreate(examples []*model.SQLExample) error {
	if len(examples) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(examples, 100).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "import sql examples failed", err)
	}
	return nil
}

func (r *sqlExampleRepository) FindByID(id int64) (*model.SQLExample, error) {
	var example model.SQLExample
	if err := r.db.First(&example, id).Error; err != nil {
		return nil, wrapFind(err, "query sql example failed")
	}
	return &example, nil
}

func (r *sqlExampleRepository) List(projectID int64, offset, limit int, keyword string) ([]*model.SQLExample, int64, error) {
	var examples []*model.SQLExample
	var total int64

	query := r.db.Model(&model.SQLExample{}).Where("project_id = ?", projectID)
	if keyword != "" {
		kw := likePattern(strings.ToLower(keyword))
		query = query.Where("LOWER(natural_language_query) LIKE ? ESCAPE '!' OR LOWER(sql_query) LIKE ? ESCAPE '!'", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "count sql examples failed", err)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&examples).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list sql examples failed", err)
	}

	return examples, total, nil
}

func (r *sqlExampleRepository) ListAll(projectID int64) ([]*model.SQLExample, error) {
	var examples []*model.SQLExample
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Order("id ASC").Find(&examples).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list sql examples failed", err)
	}
	return examples, nil
}

func (r *sqlExampleRepository) Update(example *model.SQLExample) error {
	if err := r.db.Save(example).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update sql example failed", err)
	}
	return nil
}

func (r *sqlExampleRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.SQLExample{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "delete sql example failed", err)
	}
	return nil
}
