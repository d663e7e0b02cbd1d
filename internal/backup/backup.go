// Package backup implements the downloadable full-state document and its
// restore counterpart. The document mirrors the in-memory entity structure;
// restore validates shape before anything is replaced.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shataku/internal/core"
)

// ErrInvalidBackup means the document does not have the expected shape and
// nothing was restored.
var ErrInvalidBackup = errors.New("invalid backup document")

// Document is the full-state backup format.
type Document struct {
	ExportedAt time.Time              `json:"exportedAt"`
	Properties []core.Property        `json:"properties"`
	Tenants    []core.Tenant          `json:"tenants"`
	Employees  []core.Employee        `json:"employees"`
	Config     core.Settings          `json:"config"`
	Snapshots  []core.MonthlySnapshot `json:"snapshots,omitempty"`
}

// Export serialises the full in-memory structure plus snapshots.
func Export(ds core.Dataset, snaps []core.MonthlySnapshot, now time.Time) ([]byte, error) {
	doc := Document{
		ExportedAt: now.UTC(),
		Properties: ds.Properties,
		Tenants:    ds.Tenants,
		Employees:  ds.Employees,
		Config:     ds.Settings,
		Snapshots:  snaps,
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return out, nil
}

// Decode validates and parses a backup document. The three entity arrays
// must be present and array-typed, the same rule the legacy import applies.
func Decode(raw []byte) (core.Dataset, []core.MonthlySnapshot, error) {
	var shape struct {
		Properties json.RawMessage `json:"properties"`
		Tenants    json.RawMessage `json:"tenants"`
		Employees  json.RawMessage `json:"employees"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return core.Dataset{}, nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for name, section := range map[string]json.RawMessage{
		"properties": shape.Properties,
		"tenants":    shape.Tenants,
		"employees":  shape.Employees,
	} {
		if !isArray(section) {
			return core.Dataset{}, nil, fmt.Errorf("%w: %q is missing or not an array", ErrInvalidBackup, name)
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return core.Dataset{}, nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	ds := core.Dataset{
		Properties: doc.Properties,
		Tenants:    doc.Tenants,
		Employees:  doc.Employees,
		Settings:   doc.Config,
	}
	if ds.Settings == (core.Settings{}) {
		ds.Settings = core.DefaultSettings()
	}
	return ds, doc.Snapshots, nil
}

func isArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '['
	}
	return false
}
