package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusActive   TenantStatus = "active"
	StatusInactive TenantStatus = "inactive"
)

const (
	CategoryRegular  EmployeeCategory = "regular"
	CategoryContract EmployeeCategory = "contract"
	CategoryDispatch EmployeeCategory = "dispatch"
	CategoryPartner  EmployeeCategory = "partner"
)

// EmployeeCategories lists the persisted employee collections in a stable order.
var EmployeeCategories = []EmployeeCategory{
	CategoryRegular,
	CategoryContract,
	CategoryDispatch,
	CategoryPartner,
}

// DateLayout is the wire format for all entity date fields. Dates are kept as
// strings end to end; an empty or unparsable value means "no date".
const DateLayout = "2006-01-02"

// CycleMonthLayout identifies a billing cycle ("2025-03").
const CycleMonthLayout = "2006-01"

type (
	TenantStatus     string
	EmployeeCategory string

	// Property is a leased unit of shared housing. Amounts are whole yen.
	Property struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		Address       string `json:"address"`
		Capacity      int    `json:"capacity"`
		BaseRent      int64  `json:"baseRent"`
		ManagementFee int64  `json:"managementFee"`
		ParkingCost   int64  `json:"parkingCost"`
		TargetRent    int64  `json:"targetRent"`
		ContractEnd   string `json:"contractEnd,omitempty"`
	}

	// Tenant links an employee to a property and carries the monthly
	// deduction amounts. Inactive tenants are soft-deleted: exit date and
	// historical amounts stay until a permanent delete.
	Tenant struct {
		ID         int64        `json:"id"`
		EmployeeID string       `json:"employeeId"`
		Name       string       `json:"name"`
		Kana       string       `json:"kana"`
		Company    string       `json:"company"`
		PropertyID int64        `json:"propertyId"`
		Rent       int64        `json:"rent"`
		Parking    int64        `json:"parking"`
		EntryDate  string       `json:"entryDate,omitempty"`
		ExitDate   string       `json:"exitDate,omitempty"`
		Status     TenantStatus `json:"status"`
	}

	// Employee is read-mostly reference data used during tenant creation.
	Employee struct {
		ID       string           `json:"id"`
		Name     string           `json:"name"`
		Kana     string           `json:"kana"`
		Company  string           `json:"company"`
		Category EmployeeCategory `json:"category"`
	}

	// Settings is the singleton configuration record.
	Settings struct {
		ClosingDay  int    `json:"closingDay"`
		CleaningFee int64  `json:"cleaningFee"`
		CompanyName string `json:"companyName"`
	}

	// Dataset is the whole entity set the engine reads from.
	Dataset struct {
		Properties []Property `json:"properties"`
		Tenants    []Tenant   `json:"tenants"`
		Employees  []Employee `json:"employees"`
		Settings   Settings   `json:"config"`
	}

	// Cycle is one billing month with explicit boundary dates.
	Cycle struct {
		Month string `json:"month"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
)

// DefaultSettings are used when the store has no config record yet.
func DefaultSettings() Settings {
	return Settings{ClosingDay: 25, CleaningFee: 30000}
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Entity: "property", Field: "name", Reason: "required"}
	}
	if p.Capacity < 0 {
		return &ValidationError{Entity: "property", Field: "capacity", Reason: "must not be negative"}
	}
	for field, v := range map[string]int64{
		"baseRent":      p.BaseRent,
		"managementFee": p.ManagementFee,
		"parkingCost":   p.ParkingCost,
		"targetRent":    p.TargetRent,
	} {
		if v < 0 {
			return &ValidationError{Entity: "property", Field: field, Reason: "must not be negative"}
		}
	}
	return nil
}

// TotalCost is the property's monthly outlay: base rent + management fee + parking.
func (p Property) TotalCost() int64 {
	return p.BaseRent + p.ManagementFee + p.ParkingCost
}

// ActiveAt reports whether the property contract is still live at the given
// time. No end date, or one that does not parse, counts as active. The end
// date itself is inclusive: the contract runs through its last day, so the
// property still reports on that day (flagged as expired).
func (p Property) ActiveAt(now time.Time) bool {
	if p.ContractEnd == "" {
		return true
	}
	end, err := time.Parse(DateLayout, p.ContractEnd)
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !end.Before(today)
}

func (t Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Entity: "tenant", Field: "name", Reason: "required"}
	}
	if t.PropertyID == 0 {
		return &ValidationError{Entity: "tenant", Field: "propertyId", Reason: "required"}
	}
	if t.Rent < 0 || t.Parking < 0 {
		return &ValidationError{Entity: "tenant", Field: "rent/parking", Reason: "must not be negative"}
	}
	switch t.Status {
	case StatusActive, StatusInactive:
	default:
		return &ValidationError{Entity: "tenant", Field: "status", Reason: fmt.Sprintf("unknown status %q", t.Status)}
	}
	return nil
}

// Active reports whether the tenant still occupies a seat.
func (t Tenant) Active() bool {
	return t.Status == StatusActive
}

// Deduction is the tenant's total monthly payroll withholding.
func (t Tenant) Deduction() int64 {
	return t.Rent + t.Parking
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return &ValidationError{Entity: "employee", Field: "id", Reason: "required"}
	}
	switch e.Category {
	case CategoryRegular, CategoryContract, CategoryDispatch, CategoryPartner:
	default:
		return &ValidationError{Entity: "employee", Field: "category", Reason: fmt.Sprintf("unknown category %q", e.Category)}
	}
	return nil
}

// Clone returns a deep copy so the aggregation engine can never observe an
// in-place mutation of the cached value.
func (d Dataset) Clone() Dataset {
	out := Dataset{Settings: d.Settings}
	if d.Properties != nil {
		out.Properties = append([]Property(nil), d.Properties...)
	}
	if d.Tenants != nil {
		out.Tenants = append([]Tenant(nil), d.Tenants...)
	}
	if d.Employees != nil {
		out.Employees = append([]Employee(nil), d.Employees...)
	}
	return out
}

// CycleFor derives the billing cycle for a "YYYY-MM" month from the
// configured closing day: the cycle ends on the closing day of that month
// and starts the day after the previous month's closing day.
func CycleFor(month string, closingDay int) (Cycle, error) {
	t, err := time.Parse(CycleMonthLayout, month)
	if err != nil {
		return Cycle{}, &ValidationError{Entity: "cycle", Field: "month", Reason: "want YYYY-MM"}
	}
	if closingDay < 1 || closingDay > 28 {
		closingDay = DefaultSettings().ClosingDay
	}
	end := time.Date(t.Year(), t.Month(), closingDay, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -1, 1)
	return Cycle{
		Month: month,
		Start: start.Format(DateLayout),
		End:   end.Format(DateLayout),
	}, nil
}
