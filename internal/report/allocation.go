package report

import (
	"math"

	"shataku/internal/core"
)

// CompanyAllocation is one company's accumulated share of property costs.
type CompanyAllocation struct {
	Cost   int64
	Target int64
}

// allocateShared splits each property's cost and target rent across the
// companies sponsoring its active tenants, proportional to head count. Any
// property with active tenants participates, contract status aside: the
// company view charges costs wherever its people actually live, matching the
// payroll and property-count columns on the same row.
//
// Each company's share is rounded half-up independently, so the shares of a
// property do not always sum back to the property's raw figures. That is an
// accepted approximation of this system, not something to compensate for by
// reordering companies or distributing the remainder.
func allocateShared(properties []core.Property, byProp map[int64][]core.Tenant) map[string]CompanyAllocation {
	out := map[string]CompanyAllocation{}
	for _, p := range properties {
		occupants := byProp[p.ID]
		// Floor at one occupant so inconsistent bookkeeping can never
		// divide by zero.
		totalInProp := len(occupants)
		if totalInProp < 1 {
			totalInProp = 1
		}
		fromCompany := map[string]int{}
		for _, t := range occupants {
			fromCompany[companyOf(t)]++
		}
		for name, from := range fromCompany {
			share := out[name]
			share.Cost += roundShare(p.TotalCost(), from, totalInProp)
			share.Target += roundShare(p.TargetRent, from, totalInProp)
			out[name] = share
		}
	}
	return out
}

// roundShare computes round-half-up(amount × from / total).
func roundShare(amount int64, from, total int) int64 {
	q := float64(amount) * float64(from) / float64(total)
	return int64(math.Floor(q + 0.5))
}
