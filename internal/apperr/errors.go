// Package apperr holds the sentinel errors shared across layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCity          = errors.New("unknown city")
	ErrSameCity             = errors.New("origin and destination cities are the same")
	ErrInvalidQuery         = errors.New("invalid query")
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
	ErrDatasetNotLoaded     = errors.New("dataset not loaded")
)

// UnknownCityError reports a city that has no airports in the mapping.
type UnknownCityError struct {
	City string
}

func (e *UnknownCityError) Error() string {
	return fmt.Sprintf("no airports found for city %q", e.City)
}

// Is makes errors.Is(err, ErrUnknownCity) match.
func (e *UnknownCityError) Is(target error) bool {
	return target == ErrUnknownCity
}
