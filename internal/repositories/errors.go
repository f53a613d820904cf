package repositories

import (
	"errors"
	"fmt"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"gorm.io/gorm"
)

// notFound turns gorm's not-found error into apperrors.ErrNotFound
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, apperrors.ErrNotFound)
	}
	return err
}

func page(db *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}
