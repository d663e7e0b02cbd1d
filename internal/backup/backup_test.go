package backup

import (
	"errors"
	"strings"
	"testing"
	"time"

	"shataku/internal/core"
)

func TestExportDecode_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 25, 10, 30, 0, 0, time.UTC)
	ds := core.Dataset{
		Properties: []core.Property{
			{ID: 1, Name: "コーポ桜", Capacity: 2, BaseRent: 80000, TargetRent: 100000},
		},
		Tenants: []core.Tenant{
			{ID: 1, Name: "佐藤太郎", Kana: "サトウタロウ", Company: "A社",
				PropertyID: 1, Rent: 45000, Status: core.StatusActive},
		},
		Employees: []core.Employee{
			{ID: "E001", Name: "佐藤太郎", Company: "A社", Category: core.CategoryRegular},
		},
		Settings: core.Settings{ClosingDay: 20, CleaningFee: 25000, CompanyName: "テスト建設"},
	}
	snaps := []core.MonthlySnapshot{
		{ID: "s1", Cycle: core.Cycle{Month: "2025-02"}, ClosedAt: now},
	}

	raw, err := Export(ds, snaps, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(string(raw), `"exportedAt"`) {
		t.Errorf("document missing exportedAt stamp")
	}

	gotDS, gotSnaps, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(gotDS.Properties) != 1 || gotDS.Properties[0].Name != "コーポ桜" {
		t.Errorf("properties = %+v", gotDS.Properties)
	}
	if len(gotDS.Tenants) != 1 || gotDS.Tenants[0].Status != core.StatusActive {
		t.Errorf("tenants = %+v", gotDS.Tenants)
	}
	if gotDS.Settings != ds.Settings {
		t.Errorf("settings = %+v, want %+v", gotDS.Settings, ds.Settings)
	}
	if len(gotSnaps) != 1 || gotSnaps[0].ID != "s1" {
		t.Errorf("snapshots = %+v", gotSnaps)
	}
}

func TestDecode_RejectsBadShape(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "not json at all"},
		{"missing employees", `{"properties": [], "tenants": []}`},
		{"object not array", `{"properties": {}, "tenants": [], "employees": []}`},
		{"null section", `{"properties": null, "tenants": [], "employees": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tc.raw))
			if !errors.Is(err, ErrInvalidBackup) {
				t.Errorf("err = %v, want ErrInvalidBackup", err)
			}
		})
	}
}

func TestDecode_EmptyConfigFallsBackToDefaults(t *testing.T) {
	ds, _, err := Decode([]byte(`{"properties": [], "tenants": [], "employees": []}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ds.Settings != core.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", ds.Settings)
	}
}
