package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgErrors "ai2sql/pkg/errors"
)

type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

// wrapFind maps gorm lookups onto ErrRecordNotFound or a database error
func wrapFind(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgErrors.ErrRecordNotFound
	}
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, message, err)
}

// wrapWrite maps unique violations onto ErrRecordExists
func wrapWrite(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgErrors.ErrRecordExists
	}
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, message, err)
}

// likeEscape is the ESCAPE character of every LIKE built from likePattern
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// likePattern matches keyword literally anywhere in the column, use with "LIKE ? ESCAPE '!'"
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
