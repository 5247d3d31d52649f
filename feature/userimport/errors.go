package userimport

import (
	"errors"

	"user-import/feature/userimport/models"
)

// ValidationError reports malformed or incomplete import options.
type ValidationError = models.ValidationError

// ErrNoValidRecords is returned when non-empty input yields no usable record.
var ErrNoValidRecords = errors.New("no valid records")
