package repository

import (
	"time"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type ConnectionRepository interface {
	Create(conn *model.DatabaseConnection) error
	FindByID(id int64) (*model.DatabaseConnection, error)
	FindByProject(projectID int64) (*model.DatabaseConnection, error)
	ListAll() ([]*model.DatabaseConnection, error)
	Update(conn *model.DatabaseConnection) error
	UpdateStatus(id int64, status string, lastError *string, checkedAt time.Time) error
	Delete(id int64) error
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(conn *model.DatabaseConnection) error {
	if err := r.db.Create(conn).Error; err != nil {
		return wrapWrite(err, "create connection failed")
	}
	return nil
}

func (r *connectionRepository) FindByID(id int64) (*model.DatabaseConnection, error) {
	var conn model.DatabaseConnection
	if err := r.db.First(&conn, id).Error; err != nil {
		return nil, wrapFind(err, "query connection failed")
	}
	return &conn, nil
}

func (r *connectionRepository) FindByProject(projectID int64) (*model.DatabaseConnection, error) {
	var conn model.DatabaseConnection
	if err := r.db.Where("project_id = ?", projectID).First(&conn).Error; err != nil {
		return nil, wrapFind(err, "query connection failed")
	}
	return &conn, nil
}

func (r *connectionRepository) ListAll() ([]*model.DatabaseConnection, error) {
	var conns []*model.DatabaseConnection
	if err := r.db.Order("id ASC").Find(&conns).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list connections failed", err)
	}
	return conns, nil
}

func (r *connectionRepository) Update(conn *model.DatabaseConnection) error {
	if err := r.db.Save(conn).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update connection failed", err)
	}
	return nil
}

func (r *connectionRepository) UpdateStatus(id int64, status string, lastError *string, checkedAt time.Time) error {
	err := r.db.Model(&model.DatabaseConnection{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_status":     status,
		"last_error":      lastError,
		"last_checked_at": checkedAt,
	}).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update connection status failed", err)
	}
	return nil
}

// Delete removes the connection and detaches it from its project
func (r *connectionRepository) Delete(id int64) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).Where("connection_id = ?", id).
			Update("connection_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.DatabaseConnection{}, id).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "delete connection failed", err)
	}
	return nil
}
