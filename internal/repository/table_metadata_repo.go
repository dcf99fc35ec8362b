package repository

import (
	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type TableMetadataRepository interface {
	ListByProject(projectID int64) ([]*model.TableMetadata, error)
	FindByID(id int64) (*model.TableMetadata, error)
	// Replace swaps all metadata of a project for tables in one transaction
	Replace(projectID int64, tables []*model.TableMetadata) error
	Update(table *model.TableMetadata) error
}

type tableMetadataRepository struct {
	db *gorm.DB
}

func NewTableMetadataRepository(db *gorm.DB) TableMetadataRepository {
	return &tableMetadataRepository{db: db}
}

func (r *tableMetadataRepository) ListByProject(projectID int64) ([]*model.TableMetadata, error) {
	var tables []*model.TableMetadata
	err := r.db.Where("project_id = ?", projectID).
		Order("schema_name ASC").Order("table_name ASC").Find(&tables).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list table metadata failed", err)
	}
	return tables, nil
}

func (r *tableMetadataRepository) FindByID(id int64) (*model.TableMetadata, error) {
	var table model.TableMetadata
	if err := r.db.First(&table, id).Error; err != nil {
		return nil, wrapFind(err, "query table metadata failed")
	}
	return &table, nil
}

func (r *tableMetadataRepository) Replace(projectID int64, tables []*model.TableMetadata) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.TableMetadata{}).Error; err != nil {
			return err
		}
		if len(tables) == 0 {
			return nil
		}
		return tx.CreateInBatches(tables, 100).Error
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "replace table metadata failed", err)
	}
	return nil
}

func (r *tableMetadataRepository) Update(table *model.TableMetadata) error {
	if err := r.db.Save(table).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update table metadata failed", err)
	}
	return nil
}
