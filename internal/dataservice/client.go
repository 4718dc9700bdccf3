// Package dataservice talks to the external read-only contact data service.
package dataservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/liyue/tracemap/internal/domain"
)

// Client is the contract the engine requires from the data service. All
// endpoints are read-only; absence of data is an empty result, never an error.
type Client interface {
	// Timestamps returns the ordered list of all available timestamps.
	Timestamps(ctx context.Context) ([]int64, error)
	// ContactsAt returns every raw contact record active at the timestamp.
	ContactsAt(ctx context.Context, timestamp int64) ([]domain.ContactRecord, error)
	// Bounds returns the lat/lng rectangle covering the whole dataset.
	Bounds(ctx context.Context) (domain.BoundingBox, error)
	// UserContacts returns the direct-contact records for an individual.
	UserContacts(ctx context.Context, userID int) ([]domain.ContactRecord, error)
	// UserSecondaryContacts returns the transitive-contact records for an
	// individual; records carry the intermediary in Through.
	UserSecondaryContacts(ctx context.Context, userID int) ([]domain.ContactRecord, error)
	// Trajectory returns the ordered co-location points for a pair.
	Trajectory(ctx context.Context, id1, id2 int) ([]domain.TrackPoint, error)
	// Health probes service reachability.
	Health(ctx context.Context) error
}

// ErrMissingBaseURL indicates the data service base URL is not configured.
var ErrMissingBaseURL = errors.New("data service base URL is required")

// FetchError reports a network or HTTP-level failure against one endpoint.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError reports a response body that did not parse as the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
