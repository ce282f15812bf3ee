// Package docerr bridges low-level MongoDB driver errors into application
// errors, the document-backend counterpart to dberr.
package docerr

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"github.com/corebase/corebase/internal/platform/apperr"
)

const duplicateKeyCode = 11000

// Wrap inspects a mongo-driver error and classifies it into an
// [apperr.AppError], mirroring dberr.Wrap for the document backend.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("Resource")
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, we := range we.WriteErrors {
			if we.Code == duplicateKeyCode {
				return apperr.Conflict("duplicate value")
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, we := range bwe.WriteErrors {
			if we.Code == duplicateKeyCode {
				return apperr.Conflict("duplicate value")
			}
		}
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == duplicateKeyCode {
		return apperr.Conflict("duplicate value")
	}

	return apperr.Internal(err)
}
