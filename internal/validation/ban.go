package validation

import (
	"time"

	"patisson-users/internal/models"
)

// BanEndDate accepts a nil end date (permanent ban) or one strictly after now.
func BanEndDate(end *time.Time, now time.Time) (*time.Time, error) {
	if end == nil {
		return nil, nil
	}
	if !end.After(now) {
		return nil, models.NewValidationError("end_date", end.Format(time.RFC3339),
			"end_date must be in the future")
	}
	utc := end.UTC()
	return &utc, nil
}
