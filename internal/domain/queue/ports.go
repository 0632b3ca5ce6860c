package queue

import (
	"context"
	"errors"
	"time"

	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// ErrDuplicateIdentity is returned by Insert when a concurrent writer won the
// identity-key slot. The admission pipeline remaps it to ALREADY_IN_PROGRESS;
// callers never see a raw storage error for this race.
var ErrDuplicateIdentity = errors.New("queue: identity key already live")

// Repository is the storage port for queue entries. Both the admission
// pipeline and the tick processor go through it; there is no in-process
// cache, so concurrent writers serialize at the storage layer.
type Repository interface {
	// Insert persists a new entry, assigning Seq. Returns
	// ErrDuplicateIdentity when a live entry already holds the identity key.
	Insert(ctx context.Context, e *Entry) error

	// FindByID loads one entry, returning a NotFoundError when absent
	FindByID(ctx context.Context, id string) (*Entry, error)

	// FindLiveByIdentityKey returns the non-terminal entry holding the
	// identity key, or (nil, nil) when the slot is free
	FindLiveByIdentityKey(ctx context.Context, identityKey string) (*Entry, error)

	// ListLiveByCoord returns all non-terminal entries at a base in Seq order
	ListLiveByCoord(ctx context.Context, coord shared.Coord) ([]*Entry, error)

	// ListQueuedByCoord returns queued-not-started entries of the given
	// kinds at a base in Seq order (scheduler head-of-line input)
	ListQueuedByCoord(ctx context.Context, coord shared.Coord, kinds ...catalog.Kind) ([]*Entry, error)

	// ListCoordsWithQueued returns the distinct coords holding queued
	// entries of the given kinds (scheduler scan set)
	ListCoordsWithQueued(ctx context.Context, kinds ...catalog.Kind) ([]shared.Coord, error)

	// ListDue returns non-terminal entries of one kind with
	// completes_at <= now, in Seq order
	ListDue(ctx context.Context, kind catalog.Kind, now time.Time) ([]*Entry, error)

	// StartEntry atomically transitions queued -> active, stamping the
	// start and completion times. Returns false when another scheduler
	// pass already started the entry; the caller must then skip charging.
	StartEntry(ctx context.Context, id string, startedAt, completesAt time.Time) (bool, error)

	// CompleteEntry atomically transitions non-terminal -> completed.
	// Returns false when another observer already finished the entry; the
	// caller must then skip its side effects.
	CompleteEntry(ctx context.Context, id string, now time.Time) (bool, error)

	// CancelEntry atomically transitions non-terminal -> cancelled.
	// Returns false when the entry was already terminal.
	CancelEntry(ctx context.Context, id string, now time.Time) (bool, error)
}
