package persistence

import (
	"errors"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps gorm sentinels to domain errors. The database is opened
// with TranslateError, so unique violations arrive as ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// affected fails with ErrNotFound when a write matched no row.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
