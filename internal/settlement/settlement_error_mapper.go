package settlement

import (
	"errors"

	settlementerrors "github.com/jamkie/appneoconcepto-sub000/internal/settlement/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return settlementerrors.ErrPeriodNotFound
	}

	return err
}
