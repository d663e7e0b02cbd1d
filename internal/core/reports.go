package core

// Report row and total types shared by the aggregation engine, the snapshot
// record, and the export boundary. Amounts are whole yen.

type (
	// PropertyReportRow summarises one active property.
	PropertyReportRow struct {
		PropertyID int64    `json:"propertyId"`
		Name       string   `json:"name"`
		Area       string   `json:"area"`
		Capacity   int      `json:"capacity"`
		Occupants  int      `json:"occupants"`
		Vacancy    int      `json:"vacancy"`
		TotalCost  int64    `json:"totalCost"`
		TargetRent int64    `json:"targetRent"`
		Collected  int64    `json:"collected"`
		Profit     int64    `json:"profit"`
		Notes      []string `json:"notes,omitempty"`
	}

	PropertyReportTotals struct {
		Capacity   int   `json:"capacity"`
		Occupants  int   `json:"occupants"`
		Vacancy    int   `json:"vacancy"`
		TotalCost  int64 `json:"totalCost"`
		TargetRent int64 `json:"targetRent"`
		Collected  int64 `json:"collected"`
		Profit     int64 `json:"profit"`
	}

	PropertyReport struct {
		Rows   []PropertyReportRow  `json:"rows"`
		Totals PropertyReportTotals `json:"totals"`
	}

	// CompanyReportRow summarises one sponsoring company across the
	// properties its active tenants occupy.
	CompanyReportRow struct {
		Company          string `json:"company"`
		PropertyCount    int    `json:"propertyCount"`
		TenantCount      int    `json:"tenantCount"`
		PayrollDeduction int64  `json:"payrollDeduction"`
		AllocatedCost    int64  `json:"allocatedCost"`
		AllocatedTarget  int64  `json:"allocatedTarget"`
		Profit           int64  `json:"profit"`
		MonthlyProfit    int64  `json:"monthlyProfit"`
	}

	CompanyReportTotals struct {
		PropertyCount    int   `json:"propertyCount"`
		TenantCount      int   `json:"tenantCount"`
		PayrollDeduction int64 `json:"payrollDeduction"`
		AllocatedCost    int64 `json:"allocatedCost"`
		AllocatedTarget  int64 `json:"allocatedTarget"`
		Profit           int64 `json:"profit"`
		MonthlyProfit    int64 `json:"monthlyProfit"`
	}

	CompanyReport struct {
		Rows   []CompanyReportRow  `json:"rows"`
		Totals CompanyReportTotals `json:"totals"`
	}

	// PayrollReportRow is one line of the payroll deduction list.
	PayrollReportRow struct {
		EmployeeID    string `json:"employeeId"`
		Company       string `json:"company"`
		Name          string `json:"name"`
		Kana          string `json:"kana"`
		PropertyName  string `json:"propertyName"`
		RentDeduct    int64  `json:"rentDeduct"`
		ParkingDeduct int64  `json:"parkingDeduct"`
		TotalDeduct   int64  `json:"totalDeduct"`
	}

	PayrollReportTotals struct {
		RentDeduct    int64 `json:"rentDeduct"`
		ParkingDeduct int64 `json:"parkingDeduct"`
		TotalDeduct   int64 `json:"totalDeduct"`
	}

	PayrollReport struct {
		Rows   []PayrollReportRow  `json:"rows"`
		Totals PayrollReportTotals `json:"totals"`
	}

	// ReportBundle carries all three views derived from one dataset.
	ReportBundle struct {
		Property PropertyReport `json:"property"`
		Company  CompanyReport  `json:"company"`
		Payroll  PayrollReport  `json:"payroll"`
	}
)
