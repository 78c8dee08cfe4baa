package gormdb

import (
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type TxFinisher func(err *error)

// StartTx begins a transaction on db. The returned finisher commits on nil
// *err and rolls back otherwise; call it deferred with the named return error.
func StartTx(db *gorm.DB) (*gorm.DB, TxFinisher, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, nil, errors.Wrap(tx.Error, "failed to start transaction")
	}

	finisher := func(err *error) {
		if *err != nil {
			if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
				*err = errors.Wrapf(*err, "failed to rollback transaction: %s", rollbackErr)
			}
			return
		}

		if commitErr := tx.Commit().Error; commitErr != nil {
			*err = errors.Wrap(commitErr, "failed to commit transaction")
		}
	}

	return tx, finisher, nil
}
