// Package legacy imports the flat JSON document the previous generation of
// this tool kept its whole state in. The import runs at most once ever,
// guarded by a persisted marker, and a corrupt document short-circuits the
// migration rather than leaving it to retry forever.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shataku/internal/core"
)

// MetaKey marks a completed (or short-circuited) legacy migration.
const MetaKey = "legacy_migration"

// ErrCorruptDocument means the legacy document exists but does not have the
// required shape (top-level properties/tenants/employees arrays).
var ErrCorruptDocument = errors.New("legacy document is corrupt")

// Store is the slice of the durable store the migration needs.
type Store interface {
	GetMeta(ctx context.Context, key string) (string, bool, error)
	SetMeta(ctx context.Context, key, value string) error
	ImportAll(ctx context.Context, ds core.Dataset, snaps []core.MonthlySnapshot, metaKey, metaValue string) error
}

// Migrate imports the legacy document at docPath (and the sibling snapshot
// document at snapPath) into the store, exactly once ever.
//
// A missing document marks the migration done silently. A corrupt document
// logs a warning and marks the migration done WITHOUT importing, so startup
// never loops on the same broken file. Only a store I/O failure leaves the
// marker unset, to be retried on the next start.
func Migrate(ctx context.Context, st Store, docPath, snapPath string) error {
	if _, done, err := st.GetMeta(ctx, MetaKey); err != nil {
		return fmt.Errorf("check migration marker: %w", err)
	} else if done {
		return nil
	}

	stamp := time.Now().UTC().Format(time.RFC3339)

	raw, err := os.ReadFile(docPath)
	if errors.Is(err, os.ErrNotExist) {
		return st.SetMeta(ctx, MetaKey, stamp)
	}
	if err != nil {
		return fmt.Errorf("read legacy document: %w", err)
	}

	ds, err := DecodeDocument(raw)
	if err != nil {
		slog.WarnContext(ctx, "Legacy document is corrupt, migration skipped permanently",
			"path", docPath, "error", err)
		return st.SetMeta(ctx, MetaKey, stamp)
	}

	snaps := loadSnapshots(ctx, snapPath)

	if err := st.ImportAll(ctx, ds, snaps, MetaKey, stamp); err != nil {
		return fmt.Errorf("import legacy dataset: %w", err)
	}

	slog.InfoContext(ctx, "Legacy document migrated",
		"properties", len(ds.Properties),
		"tenants", len(ds.Tenants),
		"employees", len(ds.Employees),
		"snapshots", len(snaps))
	return nil
}

// LoadDataset reads and decodes the legacy document directly, for the
// last-resort fallback when the store is empty after migration.
func LoadDataset(ctx context.Context, docPath string) (core.Dataset, bool) {
	raw, err := os.ReadFile(docPath)
	if err != nil {
		return core.Dataset{}, false
	}
	ds, err := DecodeDocument(raw)
	if err != nil {
		slog.WarnContext(ctx, "Legacy fallback document unusable", "path", docPath, "error", err)
		return core.Dataset{}, false
	}
	return ds, true
}

// DecodeDocument parses the legacy flat document. The three entity arrays
// must all be present and array-typed; anything else is corruption.
func DecodeDocument(raw []byte) (core.Dataset, error) {
	var doc struct {
		Properties json.RawMessage `json:"properties"`
		Tenants    json.RawMessage `json:"tenants"`
		Employees  json.RawMessage `json:"employees"`
		Config     json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Dataset{}, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	for name, section := range map[string]json.RawMessage{
		"properties": doc.Properties,
		"tenants":    doc.Tenants,
		"employees":  doc.Employees,
	} {
		if !isJSONArray(section) {
			return core.Dataset{}, fmt.Errorf("%w: %q is missing or not an array", ErrCorruptDocument, name)
		}
	}

	ds := core.Dataset{Settings: core.DefaultSettings()}

	var rawProps []map[string]any
	if err := json.Unmarshal(doc.Properties, &rawProps); err != nil {
		return core.Dataset{}, fmt.Errorf("%w: properties: %v", ErrCorruptDocument, err)
	}
	for _, m := range rawProps {
		ds.Properties = append(ds.Properties, decodeProperty(m))
	}

	var rawTenants []map[string]any
	if err := json.Unmarshal(doc.Tenants, &rawTenants); err != nil {
		return core.Dataset{}, fmt.Errorf("%w: tenants: %v", ErrCorruptDocument, err)
	}
	for _, m := range rawTenants {
		ds.Tenants = append(ds.Tenants, decodeTenant(m))
	}

	var rawEmployees []map[string]any
	if err := json.Unmarshal(doc.Employees, &rawEmployees); err != nil {
		return core.Dataset{}, fmt.Errorf("%w: employees: %v", ErrCorruptDocument, err)
	}
	for _, m := range rawEmployees {
		ds.Employees = append(ds.Employees, decodeEmployee(m))
	}

	if isJSONObject(doc.Config) {
		var m map[string]any
		if err := json.Unmarshal(doc.Config, &m); err == nil {
			ds.Settings = decodeSettings(m)
		}
	}

	return ds, nil
}

// loadSnapshots reads the sibling snapshot document. Best effort: a missing
// or unreadable file just means no historical snapshots carry over.
func loadSnapshots(ctx context.Context, snapPath string) []core.MonthlySnapshot {
	if snapPath == "" {
		return nil
	}
	raw, err := os.ReadFile(snapPath)
	if err != nil {
		return nil
	}
	var doc struct {
		Snapshots []core.MonthlySnapshot `json:"snapshots"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.WarnContext(ctx, "Legacy snapshot document unusable, skipping",
			"path", snapPath, "error", err)
		return nil
	}
	return doc.Snapshots
}

// Legacy exports went through several field-naming generations; each field
// is resolved against its candidate keys in priority order.

func decodeProperty(m map[string]any) core.Property {
	return core.Property{
		ID:            pickInt64(m, "id", "propertyId", "no"),
		Name:          pickString(m, "name", "propertyName", "title"),
		Address:       pickString(m, "address", "addr", "location"),
		Capacity:      int(pickInt64(m, "capacity", "rooms", "maxResidents")),
		BaseRent:      pickInt64(m, "baseRent", "rent"),
		ManagementFee: pickInt64(m, "managementFee", "kanrihi", "fee"),
		ParkingCost:   pickInt64(m, "parkingCost", "parkingFee"),
		TargetRent:    pickInt64(m, "targetRent", "target"),
		ContractEnd:   pickString(m, "contractEnd", "contractEndDate", "endDate"),
	}
}

func decodeTenant(m map[string]any) core.Tenant {
	status := core.TenantStatus(pickString(m, "status"))
	if status != core.StatusInactive {
		status = core.StatusActive
	}
	return core.Tenant{
		ID:         pickInt64(m, "id", "tenantId"),
		EmployeeID: pickString(m, "employeeId", "empId", "shainNo"),
		Name:       pickString(m, "name", "tenantName"),
		Kana:       pickString(m, "kana", "furigana"),
		Company:    pickString(m, "company", "companyName"),
		PropertyID: pickInt64(m, "propertyId", "roomId"),
		Rent:       pickInt64(m, "rent", "rentShare"),
		Parking:    pickInt64(m, "parking", "parkingFee"),
		EntryDate:  pickString(m, "entryDate", "moveInDate"),
		ExitDate:   pickString(m, "exitDate", "moveOutDate"),
		Status:     status,
	}
}

func decodeEmployee(m map[string]any) core.Employee {
	category := core.EmployeeCategory(pickString(m, "category", "type"))
	valid := false
	for _, c := range core.EmployeeCategories {
		if category == c {
			valid = true
			break
		}
	}
	if !valid {
		category = core.CategoryRegular
	}
	return core.Employee{
		ID:       pickString(m, "id", "employeeId", "shainNo"),
		Name:     pickString(m, "name"),
		Kana:     pickString(m, "kana", "furigana"),
		Company:  pickString(m, "company", "companyName"),
		Category: category,
	}
}

func decodeSettings(m map[string]any) core.Settings {
	s := core.DefaultSettings()
	if v := pickInt64(m, "closingDay", "shimebi"); v > 0 {
		s.ClosingDay = int(v)
	}
	if v := pickInt64(m, "cleaningFee", "defaultCleaningFee"); v > 0 {
		s.CleaningFee = v
	}
	if v := pickString(m, "companyName", "displayName"); v != "" {
		s.CompanyName = v
	}
	return s
}

func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func pickInt64(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n)
		case string:
			var parsed float64
			if _, err := fmt.Sscanf(n, "%g", &parsed); err == nil {
				return int64(parsed)
			}
		}
	}
	return 0
}

func isJSONArray(raw json.RawMessage) bool {
	return firstByte(raw) == '['
}

func isJSONObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
