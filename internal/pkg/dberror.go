package pkg

import (
	"errors"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"gorm.io/gorm"
)

// MapDBError converts GORM errors to domain errors. Repositories return its
// result unchanged so services never see driver errors.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.NewAppError(domain.CodeValidation, "referenced record does not exist", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not every dialector translates driver errors to
// gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
