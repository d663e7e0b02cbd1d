package core

import "time"

// SnapshotTotals are the headline aggregates frozen at close time.
type SnapshotTotals struct {
	PropertyCount int     `json:"propertyCount"`
	TenantCount   int     `json:"tenantCount"`
	Collected     int64   `json:"collected"`
	Cost          int64   `json:"cost"`
	Target        int64   `json:"target"`
	Profit        int64   `json:"profit"`
	OccupancyRate float64 `json:"occupancyRate"`
}

// MonthlySnapshot is the immutable record of one monthly close. It is
// self-contained: the frozen report bundle has no live relationship back to
// the entities it was derived from.
type MonthlySnapshot struct {
	ID       string         `json:"id"`
	Cycle    Cycle          `json:"cycle"`
	ClosedAt time.Time      `json:"closedAt"`
	Totals   SnapshotTotals `json:"totals"`
	Reports  ReportBundle   `json:"reports"`
}
