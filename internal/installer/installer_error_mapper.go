package installer

import (
	"errors"
	"strings"

	installererrors "github.com/jamkie/appneoconcepto-sub000/internal/installer/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return installererrors.ErrInstallerNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_installer_number" {
			return installererrors.ErrInstallerNumberAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_installer_number") {
		return installererrors.ErrInstallerNumberAlreadyExists
	}

	return err
}
