package services

import (
	apperrors "twxcli/internal/errors"
)

// Report service errors. They are AppErrors so the HTTP layer maps them by
// type; callers match them with errors.Is.
var (
	ErrNoData = &apperrors.AppError{
		Type:    apperrors.ErrTypeNotFound,
		Message: "no data published for the requested day",
	}
	ErrUnknownKind = &apperrors.AppError{
		Type:    apperrors.ErrTypeValidation,
		Message: "unknown report kind",
	}
	ErrInvalidRange = &apperrors.AppError{
		Type:    apperrors.ErrTypeValidation,
		Message: "range end is before its start",
	}
	ErrRangeTooLong = &apperrors.AppError{
		Type:    apperrors.ErrTypeValidation,
		Message: "date range exceeds the configured maximum",
	}
)
