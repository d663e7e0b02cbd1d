package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shataku/internal/core"
)

func sampleBundle() core.ReportBundle {
	return core.ReportBundle{
		Property: core.PropertyReport{
			Rows: []core.PropertyReportRow{
				{Name: "名古屋工場第1社宅", Area: "名古屋工場", Capacity: 2, Occupants: 2,
					TotalCost: 85000, TargetRent: 100000, Collected: 95000, Profit: 10000,
					Notes: []string{"契約満了間近", "家賃0円の入居者あり"}},
			},
			Totals: core.PropertyReportTotals{Capacity: 2, Occupants: 2,
				TotalCost: 85000, TargetRent: 100000, Collected: 95000, Profit: 10000},
		},
		Company: core.CompanyReport{
			Rows: []core.CompanyReportRow{
				{Company: "A社", PropertyCount: 1, TenantCount: 1, PayrollDeduction: 45000,
					AllocatedCost: 42500, AllocatedTarget: 50000, Profit: 7500, MonthlyProfit: 2500},
			},
			Totals: core.CompanyReportTotals{PropertyCount: 1, TenantCount: 1, PayrollDeduction: 45000,
				AllocatedCost: 42500, AllocatedTarget: 50000, Profit: 7500, MonthlyProfit: 2500},
		},
		Payroll: core.PayrollReport{
			Rows: []core.PayrollReportRow{
				{EmployeeID: "E001", Company: "A社", Name: "佐藤太郎", Kana: "サトウタロウ",
					PropertyName: "名古屋工場第1社宅", RentDeduct: 45000, ParkingDeduct: 5000, TotalDeduct: 50000},
			},
			Totals: core.PayrollReportTotals{RentDeduct: 45000, ParkingDeduct: 5000, TotalDeduct: 50000},
		},
	}
}

func TestTables_ShapeAndTotalsRow(t *testing.T) {
	tables := Tables(sampleBundle())
	if len(tables) != 3 {
		t.Fatalf("tables = %d, want 3", len(tables))
	}

	for _, tbl := range tables {
		t.Run(tbl.Name, func(t *testing.T) {
			if len(tbl.Rows) == 0 {
				t.Fatalf("no rows")
			}
			for i, row := range tbl.Rows {
				if len(row) != len(tbl.Header) {
					t.Errorf("row %d has %d cells, header has %d", i, len(row), len(tbl.Header))
				}
			}
			last := tbl.Rows[len(tbl.Rows)-1]
			if last[0] != "合計" {
				t.Errorf("last row starts with %q, want the totals row", last[0])
			}
		})
	}
}

func TestCompanyTable_TotalsRowFilled(t *testing.T) {
	tbl := Tables(sampleBundle())[1]
	totals := tbl.Rows[len(tbl.Rows)-1]
	want := []string{"合計", "1", "1", "45000", "42500", "50000", "7500", "2500"}
	for i := range want {
		if totals[i] != want[i] {
			t.Errorf("totals cell %d = %q, want %q", i, totals[i], want[i])
		}
	}
}

func TestPropertyTable_CellValues(t *testing.T) {
	tbl := Tables(sampleBundle())[0]
	row := tbl.Rows[0]
	want := []string{"名古屋工場第1社宅", "名古屋工場", "2", "2", "0",
		"85000", "100000", "95000", "10000", "契約満了間近 / 家賃0円の入居者あり"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, Tables(sampleBundle())[2]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-read CSV: %v", err)
	}
	// Header, one employee, totals.
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0][0] != "社員番号" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][7] != "50000" {
		t.Errorf("total deduction cell = %q, want 50000", records[1][7])
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")

	if err := WriteAll(dir, sampleBundle()); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	for _, name := range []string{"property.csv", "company.csv", "payroll.csv"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(raw) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
