package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int64) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByIDs(ids []int64) ([]*model.User, error)
	List(offset, limit int, keyword string) ([]*model.User, int64, error)
	Update(user *model.User) error
	UpdateRole(id int64, role string) error
	UpdateLastLogin(id int64) error
	SetLastProject(id int64, projectID *int64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapWrite(err, "create user failed")
	}
	return nil
}

func (r *userRepository) FindByID(id int64) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, wrapFind(err, "query user failed")
	}
	return &user, nil
}

// FindByEmail matches case-insensitively, emails are stored lower-cased
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, wrapFind(err, "query user failed")
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ids []int64) ([]*model.User, error) {
	var users []*model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "query users failed", err)
	}
	return users, nil
}

func (r *userRepository) List(offset, limit int, keyword string) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.Model(&model.User{})
	if keyword != "" {
		kw := likePattern(strings.ToLower(keyword))
		query = query.Where("LOWER(email) LIKE ? ESCAPE '!' OR LOWER(name) LIKE ? ESCAPE '!'", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "count users failed", err)
	}

	if err := query.Order("email ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "list users failed", err)
	}

	return users, total, nil
}

func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return wrapWrite(err, "update user failed")
	}
	return nil
}

func (r *userRepository) UpdateRole(id int64, role string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("role", role).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update user role failed", err)
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(id int64) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update last login failed", err)
	}
	return nil
}

func (r *userRepository) SetLastProject(id int64, projectID *int64) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("last_project_id", projectID).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "update last project failed", err)
	}
	return nil
}
