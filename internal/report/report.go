// Package report derives the three financial views from an entity dataset.
//
// Everything in this package is a pure function of (dataset, evaluation time):
// no side effects, no hidden state, safe to recompute on every request. Totals
// are produced only by summing the generated rows, so the exposed totals can
// never drift from the column sums.
package report

import (
	"sort"
	"time"

	"shataku/internal/core"
)

// companyNone buckets active tenants that have no sponsoring company set.
const companyNone = "(会社なし)"

// expiryWarningDays is the look-ahead window for the contract expiry note.
const expiryWarningDays = 60

// BuildAll derives the full report bundle at the given evaluation time.
func BuildAll(ds core.Dataset, now time.Time) core.ReportBundle {
	return core.ReportBundle{
		Property: BuildPropertyReport(ds, now),
		Company:  BuildCompanyReport(ds, now),
		Payroll:  BuildPayrollReport(ds, now),
	}
}

// BuildPropertyReport returns one row per active property. A property with
// occupants beyond capacity reports zero vacancy, never a negative one.
func BuildPropertyReport(ds core.Dataset, now time.Time) core.PropertyReport {
	byProp := activeTenantsByProperty(ds.Tenants)

	var rep core.PropertyReport
	for _, p := range ds.Properties {
		if !p.ActiveAt(now) {
			continue
		}
		occupants := byProp[p.ID]
		collected := int64(0)
		zeroRent := false
		for _, t := range occupants {
			collected += t.Deduction()
			if t.Rent == 0 {
				zeroRent = true
			}
		}
		vacancy := p.Capacity - len(occupants)
		if vacancy < 0 {
			vacancy = 0
		}
		row := core.PropertyReportRow{
			PropertyID: p.ID,
			Name:       p.Name,
			Area:       extractArea(p.Name, p.Address),
			Capacity:   p.Capacity,
			Occupants:  len(occupants),
			Vacancy:    vacancy,
			TotalCost:  p.TotalCost(),
			TargetRent: p.TargetRent,
			Collected:  collected,
			Profit:     collected - p.TotalCost(),
			Notes:      propertyNotes(p, now, zeroRent),
		}
		rep.Rows = append(rep.Rows, row)

		rep.Totals.Capacity += row.Capacity
		rep.Totals.Occupants += row.Occupants
		rep.Totals.Vacancy += row.Vacancy
		rep.Totals.TotalCost += row.TotalCost
		rep.Totals.TargetRent += row.TargetRent
		rep.Totals.Collected += row.Collected
		rep.Totals.Profit += row.Profit
	}
	return rep
}

// BuildCompanyReport returns one row per sponsoring company found among
// active tenants, with shared property costs split by proportional
// allocation. Rows sort by company name, Japanese-aware.
func BuildCompanyReport(ds core.Dataset, now time.Time) core.CompanyReport {
	byProp := activeTenantsByProperty(ds.Tenants)
	alloc := allocateShared(ds.Properties, byProp)

	type companyAgg struct {
		properties map[int64]struct{}
		tenants    int
		payroll    int64
	}
	companies := map[string]*companyAgg{}
	for _, t := range ds.Tenants {
		if !t.Active() {
			continue
		}
		name := companyOf(t)
		agg := companies[name]
		if agg == nil {
			agg = &companyAgg{properties: map[int64]struct{}{}}
			companies[name] = agg
		}
		agg.properties[t.PropertyID] = struct{}{}
		agg.tenants++
		agg.payroll += t.Deduction()
	}

	var rep core.CompanyReport
	for name, agg := range companies {
		a := alloc[name]
		row := core.CompanyReportRow{
			Company:          name,
			PropertyCount:    len(agg.properties),
			TenantCount:      agg.tenants,
			PayrollDeduction: agg.payroll,
			AllocatedCost:    a.Cost,
			AllocatedTarget:  a.Target,
			Profit:           a.Target - a.Cost,
			MonthlyProfit:    agg.payroll - a.Cost,
		}
		rep.Rows = append(rep.Rows, row)
	}

	cmp := newCollator()
	sort.Slice(rep.Rows, func(i, j int) bool {
		return cmp.less(rep.Rows[i].Company, rep.Rows[j].Company)
	})

	for _, row := range rep.Rows {
		rep.Totals.PropertyCount += row.PropertyCount
		rep.Totals.TenantCount += row.TenantCount
		rep.Totals.PayrollDeduction += row.PayrollDeduction
		rep.Totals.AllocatedCost += row.AllocatedCost
		rep.Totals.AllocatedTarget += row.AllocatedTarget
		rep.Totals.Profit += row.Profit
		rep.Totals.MonthlyProfit += row.MonthlyProfit
	}
	return rep
}

// BuildPayrollReport returns one row per active tenant with something to
// deduct. Tenants whose rent and parking are both zero are omitted.
func BuildPayrollReport(ds core.Dataset, now time.Time) core.PayrollReport {
	propName := map[int64]string{}
	for _, p := range ds.Properties {
		propName[p.ID] = p.Name
	}

	var rep core.PayrollReport
	for _, t := range ds.Tenants {
		if !t.Active() || t.Deduction() == 0 {
			continue
		}
		row := core.PayrollReportRow{
			EmployeeID:    t.EmployeeID,
			Company:       companyOf(t),
			Name:          t.Name,
			Kana:          t.Kana,
			PropertyName:  propName[t.PropertyID],
			RentDeduct:    t.Rent,
			ParkingDeduct: t.Parking,
			TotalDeduct:   t.Deduction(),
		}
		rep.Rows = append(rep.Rows, row)
	}

	cmp := newCollator()
	sort.Slice(rep.Rows, func(i, j int) bool {
		a, b := rep.Rows[i], rep.Rows[j]
		if a.Company != b.Company {
			return cmp.less(a.Company, b.Company)
		}
		return cmp.less(a.Kana, b.Kana)
	})

	for _, row := range rep.Rows {
		rep.Totals.RentDeduct += row.RentDeduct
		rep.Totals.ParkingDeduct += row.ParkingDeduct
		rep.Totals.TotalDeduct += row.TotalDeduct
	}
	return rep
}

// OccupancyRate is occupants over capacity across the property report,
// as a fraction. Zero total capacity yields zero.
func OccupancyRate(rep core.PropertyReport) float64 {
	if rep.Totals.Capacity == 0 {
		return 0
	}
	return float64(rep.Totals.Occupants) / float64(rep.Totals.Capacity)
}

func companyOf(t core.Tenant) string {
	if t.Company == "" {
		return companyNone
	}
	return t.Company
}

func activeTenantsByProperty(tenants []core.Tenant) map[int64][]core.Tenant {
	byProp := map[int64][]core.Tenant{}
	for _, t := range tenants {
		if t.Active() {
			byProp[t.PropertyID] = append(byProp[t.PropertyID], t)
		}
	}
	return byProp
}

func propertyNotes(p core.Property, now time.Time, zeroRent bool) []string {
	var notes []string
	if p.ContractEnd != "" {
		if end, err := time.Parse(core.DateLayout, p.ContractEnd); err == nil {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			switch {
			case end.Before(today.AddDate(0, 0, 1)):
				notes = append(notes, "契約満了")
			case !end.After(today.AddDate(0, 0, expiryWarningDays)):
				notes = append(notes, "契約満了間近")
			}
		}
	}
	if zeroRent {
		notes = append(notes, "家賃0円の入居者あり")
	}
	return notes
}
