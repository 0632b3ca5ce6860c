package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/domain/catalog"
	"github.com/astrokernel/imperium/internal/domain/queue"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

var terminalStatuses = []string{
	string(queue.StatusCompleted),
	string(queue.StatusCancelled),
}

// GormQueueRepository implements queue.Repository using GORM. The identity
// uniqueness backstop lives in the ux_queue_identity_live index; a lost
// insert race surfaces as queue.ErrDuplicateIdentity.
type GormQueueRepository struct {
	db *gorm.DB
}

// NewGormQueueRepository creates a new GORM queue repository
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db}
}

// Insert persists a new entry, assigning its Seq
func (r *GormQueueRepository) Insert(ctx context.Context, e *queue.Entry) error {
	model := r.entryToModel(e)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return queue.ErrDuplicateIdentity
		}
		return fmt.Errorf("failed to insert queue entry: %w", result.Error)
	}
	e.Seq = model.Seq
	e.CreatedAt = model.CreatedAt
	return nil
}

// FindByID retrieves one entry by its public ID
func (r *GormQueueRepository) FindByID(ctx context.Context, id string) (*queue.Entry, error) {
	var model QueueEntryModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("queue entry not found: %s", id))
		}
		return nil, fmt.Errorf("failed to find queue entry: %w", result.Error)
	}
	return r.modelToEntry(&model)
}

// FindLiveByIdentityKey returns the non-terminal holder of an identity key
func (r *GormQueueRepository) FindLiveByIdentityKey(ctx context.Context, identityKey string) (*queue.Entry, error) {
	var model QueueEntryModel
	result := r.db.WithContext(ctx).
		Where("identity_key = ? AND status NOT IN ?", identityKey, terminalStatuses).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find live queue entry: %w", result.Error)
	}
	return r.modelToEntry(&model)
}

// ListLiveByCoord returns all non-terminal entries at a base in Seq order
func (r *GormQueueRepository) ListLiveByCoord(ctx context.Context, coord shared.Coord) ([]*queue.Entry, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("coord = ? AND status NOT IN ?", coord.Value(), terminalStatuses))
}

// ListQueuedByCoord returns queued entries of the given kinds at a base in Seq order
func (r *GormQueueRepository) ListQueuedByCoord(ctx context.Context, coord shared.Coord, kinds ...catalog.Kind) ([]*queue.Entry, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("coord = ? AND status = ? AND type IN ?", coord.Value(), string(queue.StatusQueued), kindStrings(kinds)))
}

// ListCoordsWithQueued returns distinct coords holding queued entries of the given kinds
func (r *GormQueueRepository) ListCoordsWithQueued(ctx context.Context, kinds ...catalog.Kind) ([]shared.Coord, error) {
	var values []string
	result := r.db.WithContext(ctx).Model(&QueueEntryModel{}).
		Where("status = ? AND type IN ?", string(queue.StatusQueued), kindStrings(kinds)).
		Distinct().Order("coord").Pluck("coord", &values)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list queued coords: %w", result.Error)
	}

	coords := make([]shared.Coord, 0, len(values))
	for _, v := range values {
		coord, err := shared.NewCoord(v)
		if err != nil {
			continue // Skip invalid rows
		}
		coords = append(coords, coord)
	}
	return coords, nil
}

// ListDue returns non-terminal entries of one kind due at or before now
func (r *GormQueueRepository) ListDue(ctx context.Context, kind catalog.Kind, now time.Time) ([]*queue.Entry, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("type = ? AND status NOT IN ? AND completes_at IS NOT NULL AND completes_at <= ?",
			string(kind), terminalStatuses, now))
}

func (r *GormQueueRepository) list(ctx context.Context, tx *gorm.DB) ([]*queue.Entry, error) {
	var models []QueueEntryModel
	result := tx.Order("seq").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", result.Error)
	}

	entries := make([]*queue.Entry, 0, len(models))
	for i := range models {
		e, err := r.modelToEntry(&models[i])
		if err != nil {
			continue // Skip invalid rows
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// StartEntry atomically transitions queued -> active. The single-row guarded
// update is what makes overlapping scheduler passes charge an item exactly
// once: the loser sees zero rows affected and must not deduct credits.
func (r *GormQueueRepository) StartEntry(ctx context.Context, id string, startedAt, completesAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&QueueEntryModel{}).
		Where("id = ? AND status = ?", id, string(queue.StatusQueued)).
		Updates(map[string]interface{}{
			"status":       string(queue.StatusActive),
			"started_at":   startedAt,
			"completes_at": completesAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to start queue entry: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// CompleteEntry atomically transitions non-terminal -> completed, releasing
// the identity-key slot. The single-row guarded update is what makes
// duplicate due-item observations safe.
func (r *GormQueueRepository) CompleteEntry(ctx context.Context, id string, now time.Time) (bool, error) {
	return r.finish(ctx, id, string(queue.StatusCompleted), now)
}

// CancelEntry atomically transitions non-terminal -> cancelled
func (r *GormQueueRepository) CancelEntry(ctx context.Context, id string, now time.Time) (bool, error) {
	return r.finish(ctx, id, string(queue.StatusCancelled), now)
}

func (r *GormQueueRepository) finish(ctx context.Context, id, status string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&QueueEntryModel{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Updates(map[string]interface{}{
			"status":     status,
			"live":       nil,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to finish queue entry: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormQueueRepository) entryToModel(e *queue.Entry) *QueueEntryModel {
	live := int8(1)
	model := &QueueEntryModel{
		ID:          e.ID,
		Type:        string(e.Type),
		IdentityKey: e.IdentityKey,
		EmpireID:    e.EmpireID.Value(),
		Coord:       e.Coord.Value(),
		CatalogKey:  e.CatalogKey,
		Quantity:    e.Quantity,
		TargetLevel: e.TargetLevel,
		EnergyDelta: e.EnergyDelta,
		CreditsCost: e.CreditsCost,
		Status:      string(e.Status),
		StartedAt:   e.StartedAt,
		CompletesAt: e.CompletesAt,
	}
	if !e.Status.IsTerminal() {
		model.Live = &live
	}
	return model
}

func (r *GormQueueRepository) modelToEntry(model *QueueEntryModel) (*queue.Entry, error) {
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}
	coord, err := shared.NewCoord(model.Coord)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate in database: %w", err)
	}

	return &queue.Entry{
		ID:          model.ID,
		Seq:         model.Seq,
		Type:        catalog.Kind(model.Type),
		IdentityKey: model.IdentityKey,
		EmpireID:    empireID,
		Coord:       coord,
		CatalogKey:  model.CatalogKey,
		Quantity:    model.Quantity,
		TargetLevel: model.TargetLevel,
		EnergyDelta: model.EnergyDelta,
		CreditsCost: model.CreditsCost,
		Status:      queue.Status(model.Status),
		StartedAt:   model.StartedAt,
		CompletesAt: model.CompletesAt,
		CreatedAt:   model.CreatedAt,
	}, nil
}

func kindStrings(kinds []catalog.Kind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}

// isDuplicateKey recognizes unique-constraint violations across drivers.
// GORM translates most of them to ErrDuplicatedKey; the string checks cover
// driver paths that bypass translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
