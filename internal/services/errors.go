package services

import (
	"errors"
	"fmt"

	"github.com/wavelink-app/backend/internal/repositories"
)

var (
	// ErrInvalidArgument is returned for malformed ids, unknown enum values
	// and out-of-range pagination.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound mirrors the repository sentinel so callers can match on
	// either layer.
	ErrNotFound = repositories.ErrNotFound
)

// mapRepoErr converts repository id-format failures into the service-level
// invalid-argument kind; everything else propagates unchanged.
func mapRepoErr(err error) error {
	if errors.Is(err, repositories.ErrInvalidID) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return err
}
