package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Violation names the class of a failed write.
type Violation string

const (
	ViolationNone       Violation = ""
	ViolationUnique     Violation = "unique_violation"
	ViolationForeignKey Violation = "foreign_key_violation"
	ViolationNotNull    Violation = "not_null_violation"
	ViolationCheck      Violation = "check_violation"
	ViolationInvalid    Violation = "invalid_value"
	ViolationCanceled   Violation = "canceled"
	ViolationOther      Violation = "other"
)

// Classify maps a store error onto a Violation. gorm's translated errors cover both
// drivers; raw pgconn errors are inspected by SQLSTATE for the codes gorm leaves alone.
func Classify(err error) Violation {
	if err == nil {
		return ViolationNone
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ViolationUnique
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ViolationForeignKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ViolationCheck
	case errors.Is(err, gorm.ErrInvalidValue), errors.Is(err, gorm.ErrInvalidData):
		return ViolationInvalid
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ViolationUnique
		case "23503":
			return ViolationForeignKey
		case "23502":
			return ViolationNotNull
		case "23514":
			return ViolationCheck
		case "22007", "22008", "22P02":
			return ViolationInvalid
		case "57014":
			return ViolationCanceled
		}
	}
	return ViolationOther
}
