package repository

import (
	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type ProjectMemberRepository interface {
	Create(member *model.ProjectMember) error
	Find(projectID, userID int64) (*model.ProjectMember, error)
	ListByProject(projectID int64, opts ...QueryOption) ([]*model.ProjectMember, error)
	ListByUser(userID int64, opts ...QueryOption) ([]*model.ProjectMember, error)
	UpdateRole(projectID, userID int64, role string) error
	Delete(projectID, userID int64) error
}

type projectMemberRepository struct {
	db *gorm.DB
}

func NewProjectMemberRepository(db *gorm.DB) ProjectMemberRepository {
	return &projectMemberRepository{db: db}
}

func (r *projectMemberRepository) Create(member *model.ProjectMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapWrite(err, "create project member failed")
	}
	return nil
}

func (r *projectMemberRepository) Find(projectID, userID int64) (*model.ProjectMember, error) {
	var member model.ProjectMember
	err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if err != nil {
		return nil, wrapFind(err, "query project member failed")
	}
	return &member, nil
}

func (r *projectMemberRepository) ListByProject(projectID int64, opts ...QueryOption) ([]*model.ProjectMember, error) {
	var members []*model.ProjectMember
	query := applyOptions(r.db.Where("project_id = ?", projectID), opts)
	if err := query.Order("created_at ASC").Order("id ASC").Find(&members).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list project members failed", err)
	}
	return members, nil
}

func (r *projectMemberRepository) ListByUser(userID int64, opts ...QueryOption) ([]*model.ProjectMember, error) {
	var members []*model.ProjectMember
	query := applyOptions(r.db.Where("user_id = ?", userID), opts)
	if err := query.Order("project_id ASC").Find(&members).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list user memberships failed", err)
	}
	return members, nil
}

func (r *projectMemberRepository) UpdateRole(projectID, userID int64, role string) error {
	res := r.db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if res.Error != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update project member failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgErrors.ErrRecordNotFound
	}
	return nil
}

func (r *projectMemberRepository) Delete(projectID, userID int64) error {
	res := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&model.ProjectMember{})
	if res.Error != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "delete project member failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgErrors.ErrRecordNotFound
	}
	return nil
}
