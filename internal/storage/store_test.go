package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shataku/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "shataku.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleDataset() core.Dataset {
	return core.Dataset{
		Properties: []core.Property{
			{ID: 1, Name: "名古屋工場第1社宅", Address: "愛知県名古屋市中区1-2-3", Capacity: 2,
				BaseRent: 80000, ManagementFee: 5000, TargetRent: 100000},
			{ID: 2, Name: "コーポ桜", Address: "豊田市若林東町1-1", Capacity: 1, BaseRent: 50000},
		},
		Tenants: []core.Tenant{
			{ID: 1, EmployeeID: "E001", Name: "佐藤太郎", Kana: "サトウタロウ", Company: "A社",
				PropertyID: 1, Rent: 45000, Status: core.StatusActive},
			{ID: 2, EmployeeID: "E002", Name: "鈴木次郎", Kana: "スズキジロウ", Company: "B社",
				PropertyID: 1, Rent: 45000, Parking: 5000, Status: core.StatusInactive, ExitDate: "2025-02-28"},
		},
		Employees: []core.Employee{
			{ID: "E001", Name: "佐藤太郎", Kana: "サトウタロウ", Company: "A社", Category: core.CategoryRegular},
			{ID: "E003", Name: "田中三郎", Kana: "タナカサブロウ", Company: "B社", Category: core.CategoryContract},
		},
		Settings: core.Settings{ClosingDay: 20, CleaningFee: 25000, CompanyName: "テスト建設"},
	}
}

func sampleSnapshot(id, month string) core.MonthlySnapshot {
	return core.MonthlySnapshot{
		ID:       id,
		Cycle:    core.Cycle{Month: month, Start: month + "-01", End: month + "-28"},
		ClosedAt: time.Date(2025, 3, 25, 10, 0, 0, 0, time.UTC),
		Totals:   core.SnapshotTotals{PropertyCount: 2, TenantCount: 1, Collected: 45000},
	}
}

func TestLoadDataset_EmptyStore(t *testing.T) {
	st := newTestStore(t)

	ds, empty, err := st.LoadDataset(context.Background())
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if !empty {
		t.Errorf("fresh store should report empty")
	}
	if ds.Settings != core.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", ds.Settings)
	}
}

func TestReplaceDataset_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	want := sampleDataset()

	if err := st.ReplaceDataset(ctx, want); err != nil {
		t.Fatalf("ReplaceDataset: %v", err)
	}

	got, empty, err := st.LoadDataset(ctx)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if empty {
		t.Errorf("store should not report empty after a write")
	}
	if len(got.Properties) != 2 || len(got.Tenants) != 2 || len(got.Employees) != 2 {
		t.Fatalf("collection sizes = %d/%d/%d, want 2/2/2",
			len(got.Properties), len(got.Tenants), len(got.Employees))
	}
	if got.Tenants[1].ExitDate != "2025-02-28" || got.Tenants[1].Status != core.StatusInactive {
		t.Errorf("soft-deleted tenant not preserved: %+v", got.Tenants[1])
	}
	if got.Settings != want.Settings {
		t.Errorf("settings = %+v, want %+v", got.Settings, want.Settings)
	}
}

func TestReplaceDataset_FullReplaceDropsDeletedRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.ReplaceDataset(ctx, sampleDataset()); err != nil {
		t.Fatalf("ReplaceDataset: %v", err)
	}

	// Drop one tenant in memory and persist again: a pure upsert would
	// leak the deleted row.
	ds := sampleDataset()
	ds.Tenants = ds.Tenants[:1]
	if err := st.ReplaceDataset(ctx, ds); err != nil {
		t.Fatalf("ReplaceDataset: %v", err)
	}

	got, _, err := st.LoadDataset(ctx)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(got.Tenants) != 1 {
		t.Errorf("tenants = %d, want 1 (deleted row must not linger)", len(got.Tenants))
	}
}

func TestSnapshots_InsertListDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, snap := range []core.MonthlySnapshot{
		sampleSnapshot("id-jan", "2025-01"),
		sampleSnapshot("id-mar", "2025-03"),
		sampleSnapshot("id-feb", "2025-02"),
	} {
		if err := st.InsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("InsertSnapshot(%s): %v", snap.ID, err)
		}
	}

	snaps, err := st.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(snaps))
	}
	for i, want := range []string{"2025-03", "2025-02", "2025-01"} {
		if snaps[i].Cycle.Month != want {
			t.Errorf("snaps[%d].Cycle.Month = %s, want %s (most recent first)", i, snaps[i].Cycle.Month, want)
		}
	}

	if err := st.DeleteSnapshot(ctx, "id-feb"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	// Idempotent on missing.
	if err := st.DeleteSnapshot(ctx, "id-feb"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}

	snaps, err = st.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Errorf("snapshots after delete = %d, want 2", len(snaps))
	}
}

func TestInsertSnapshot_DuplicateCycleBackstop(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.InsertSnapshot(ctx, sampleSnapshot("id-a", "2025-03")); err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}

	err := st.InsertSnapshot(ctx, sampleSnapshot("id-b", "2025-03"))
	var dup *core.DuplicateCycleError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateCycleError, got %v", err)
	}
	if dup.CycleMonth != "2025-03" {
		t.Errorf("CycleMonth = %s, want 2025-03", dup.CycleMonth)
	}

	// The original record is untouched.
	got, err := st.SnapshotByCycle(ctx, "2025-03")
	if err != nil {
		t.Fatalf("SnapshotByCycle: %v", err)
	}
	if got == nil || got.ID != "id-a" {
		t.Errorf("stored snapshot = %+v, want the first insert", got)
	}
}

func TestGetSnapshot_MissingIsNil(t *testing.T) {
	st := newTestStore(t)

	got, err := st.GetSnapshot(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got != nil {
		t.Errorf("missing snapshot should be nil, got %+v", got)
	}
}

func TestMeta(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetMeta(ctx, "k"); err != nil || ok {
		t.Fatalf("GetMeta on fresh store = ok=%v err=%v, want absent", ok, err)
	}

	if err := st.SetMeta(ctx, "k", "v1"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if err := st.SetMeta(ctx, "k", "v2"); err != nil {
		t.Fatalf("SetMeta upsert: %v", err)
	}

	v, ok, err := st.GetMeta(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Errorf("GetMeta = %q ok=%v err=%v, want v2", v, ok, err)
	}
}

func TestImportAll_Atomic(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.ImportAll(ctx, sampleDataset(),
		[]core.MonthlySnapshot{sampleSnapshot("id-1", "2025-01")}, "migrated", "now")
	if err != nil {
		t.Fatalf("ImportAll: %v", err)
	}

	if _, empty, _ := st.LoadDataset(ctx); empty {
		t.Errorf("entities missing after import")
	}
	if snaps, _ := st.ListSnapshots(ctx); len(snaps) != 1 {
		t.Errorf("snapshots = %d, want 1", len(snaps))
	}
	if _, ok, _ := st.GetMeta(ctx, "migrated"); !ok {
		t.Errorf("migration marker not set in the same transaction")
	}
}

func TestResetAll(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.ImportAll(ctx, sampleDataset(),
		[]core.MonthlySnapshot{sampleSnapshot("id-1", "2025-01")}, "migrated", "now"); err != nil {
		t.Fatalf("ImportAll: %v", err)
	}

	if err := st.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}

	if _, empty, _ := st.LoadDataset(ctx); !empty {
		t.Errorf("store should be empty after reset")
	}
	if snaps, _ := st.ListSnapshots(ctx); len(snaps) != 0 {
		t.Errorf("snapshots survived reset")
	}
	if _, ok, _ := st.GetMeta(ctx, "migrated"); ok {
		t.Errorf("migration metadata survived reset")
	}
}
