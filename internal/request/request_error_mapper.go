package request

import (
	"errors"

	requesterrors "github.com/jamkie/appneoconcepto-sub000/internal/request/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return requesterrors.ErrRequestNotFound
	}

	return err
}
