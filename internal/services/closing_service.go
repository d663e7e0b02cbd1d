// Package services carries the application operations on top of the cache
// and the durable store: the monthly closing lifecycle and the live report
// accessor for the export boundary.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shataku/internal/cache"
	"shataku/internal/core"
	"shataku/internal/report"
)

// SnapshotStore is the slice of the durable store the closing lifecycle needs.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snap core.MonthlySnapshot) error
	GetSnapshot(ctx context.Context, id string) (*core.MonthlySnapshot, error)
	SnapshotByCycle(ctx context.Context, cycleMonth string) (*core.MonthlySnapshot, error)
	ListSnapshots(ctx context.Context) ([]core.MonthlySnapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// Comparison exposes two frozen snapshots for side-by-side diffing.
type Comparison struct {
	A core.MonthlySnapshot
	B core.MonthlySnapshot
}

// ClosingService freezes billing cycles into immutable monthly snapshots.
type ClosingService struct {
	cache *cache.Cache
	store SnapshotStore

	now   func() time.Time
	newID func() string
}

func NewClosingService(c *cache.Cache, store SnapshotStore) *ClosingService {
	return &ClosingService{
		cache: c,
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Reports derives the three live report views from the current entity set.
func (s *ClosingService) Reports() core.ReportBundle {
	return report.BuildAll(s.cache.Snapshot(), s.now())
}

// Close freezes the given cycle from the CURRENT aggregation output. It
// fails with core.DuplicateCycleError when the cycle month is already
// closed; the existing record stays untouched.
//
// The duplicate guard is a check-then-act lookup, not a lock. Two truly
// concurrent closes of the same cycle can race past it; the unique index in
// the store then rejects the loser. Accepted for a single-operator tool.
func (s *ClosingService) Close(ctx context.Context, cycle core.Cycle) (*core.MonthlySnapshot, error) {
	existing, err := s.store.SnapshotByCycle(ctx, cycle.Month)
	if err != nil {
		return nil, fmt.Errorf("check existing snapshot: %w", err)
	}
	if existing != nil {
		return nil, &core.DuplicateCycleError{CycleMonth: cycle.Month}
	}

	now := s.now()
	bundle := report.BuildAll(s.cache.Snapshot(), now)

	snap := core.MonthlySnapshot{
		ID:       s.newID(),
		Cycle:    cycle,
		ClosedAt: now,
		Totals: core.SnapshotTotals{
			PropertyCount: len(bundle.Property.Rows),
			TenantCount:   bundle.Company.Totals.TenantCount,
			Collected:     bundle.Property.Totals.Collected,
			Cost:          bundle.Property.Totals.TotalCost,
			Target:        bundle.Property.Totals.TargetRent,
			Profit:        bundle.Property.Totals.Profit,
			OccupancyRate: report.OccupancyRate(bundle.Property),
		},
		Reports: bundle,
	}

	if err := s.store.InsertSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Cycle closed",
		"cycle", cycle.Month,
		"snapshot_id", snap.ID,
		"properties", snap.Totals.PropertyCount,
		"tenants", snap.Totals.TenantCount,
		"collected", snap.Totals.Collected)
	return &snap, nil
}

// List returns every snapshot, most recent cycle first.
func (s *ClosingService) List(ctx context.Context) ([]core.MonthlySnapshot, error) {
	return s.store.ListSnapshots(ctx)
}

// Delete removes a snapshot by id. Deleting an id that is already gone is a
// no-op; this is user-initiated cleanup.
func (s *ClosingService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Snapshot deleted", "snapshot_id", id)
	return nil
}

// Compare looks up two snapshots for side-by-side diffing. When either id is
// missing it reports ok=false with no error; this is a read-only UI
// convenience, not a transactional operation.
func (s *ClosingService) Compare(ctx context.Context, idA, idB string) (*Comparison, bool, error) {
	a, err := s.store.GetSnapshot(ctx, idA)
	if err != nil {
		return nil, false, err
	}
	b, err := s.store.GetSnapshot(ctx, idB)
	if err != nil {
		return nil, false, err
	}
	if a == nil || b == nil {
		return nil, false, nil
	}
	return &Comparison{A: *a, B: *b}, true, nil
}
