// Package export renders the report views as plain rows and columns for
// external spreadsheet or print consumers. The core mandates no particular
// file format; CSV is what the CLI ships with.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"shataku/internal/core"
)

// Table is one report view flattened to rows and columns, totals row last.
type Table struct {
	Name   string
	Title  string
	Header []string
	Rows   [][]string
}

// Tables flattens all three report views.
func Tables(b core.ReportBundle) []Table {
	return []Table{
		propertyTable(b.Property),
		companyTable(b.Company),
		payrollTable(b.Payroll),
	}
}

func propertyTable(rep core.PropertyReport) Table {
	t := Table{
		Name:   "property",
		Title:  "物件別収支",
		Header: []string{"物件名", "地区", "定員", "入居", "空き", "費用", "目標家賃", "徴収額", "損益", "備考"},
	}
	for _, r := range rep.Rows {
		t.Rows = append(t.Rows, []string{
			r.Name,
			r.Area,
			strconv.Itoa(r.Capacity),
			strconv.Itoa(r.Occupants),
			strconv.Itoa(r.Vacancy),
			yen(r.TotalCost),
			yen(r.TargetRent),
			yen(r.Collected),
			yen(r.Profit),
			strings.Join(r.Notes, " / "),
		})
	}
	t.Rows = append(t.Rows, []string{
		"合計",
		"",
		strconv.Itoa(rep.Totals.Capacity),
		strconv.Itoa(rep.Totals.Occupants),
		strconv.Itoa(rep.Totals.Vacancy),
		yen(rep.Totals.TotalCost),
		yen(rep.Totals.TargetRent),
		yen(rep.Totals.Collected),
		yen(rep.Totals.Profit),
		"",
	})
	return t
}

func companyTable(rep core.CompanyReport) Table {
	t := Table{
		Name:   "company",
		Title:  "会社別請求",
		Header: []string{"会社", "物件数", "入居者数", "給与控除額", "按分費用", "按分目標", "損益", "月次損益"},
	}
	for _, r := range rep.Rows {
		t.Rows = append(t.Rows, []string{
			r.Company,
			strconv.Itoa(r.PropertyCount),
			strconv.Itoa(r.TenantCount),
			yen(r.PayrollDeduction),
			yen(r.AllocatedCost),
			yen(r.AllocatedTarget),
			yen(r.Profit),
			yen(r.MonthlyProfit),
		})
	}
	t.Rows = append(t.Rows, []string{
		"合計",
		strconv.Itoa(rep.Totals.PropertyCount),
		strconv.Itoa(rep.Totals.TenantCount),
		yen(rep.Totals.PayrollDeduction),
		yen(rep.Totals.AllocatedCost),
		yen(rep.Totals.AllocatedTarget),
		yen(rep.Totals.Profit),
		yen(rep.Totals.MonthlyProfit),
	})
	return t
}

func payrollTable(rep core.PayrollReport) Table {
	t := Table{
		Name:   "payroll",
		Title:  "給与控除一覧",
		Header: []string{"社員番号", "会社", "氏名", "フリガナ", "物件", "家賃控除", "駐車場控除", "控除合計"},
	}
	for _, r := range rep.Rows {
		t.Rows = append(t.Rows, []string{
			r.EmployeeID,
			r.Company,
			r.Name,
			r.Kana,
			r.PropertyName,
			yen(r.RentDeduct),
			yen(r.ParkingDeduct),
			yen(r.TotalDeduct),
		})
	}
	t.Rows = append(t.Rows, []string{
		"合計", "", "", "", "",
		yen(rep.Totals.RentDeduct),
		yen(rep.Totals.ParkingDeduct),
		yen(rep.Totals.TotalDeduct),
	})
	return t
}

// WriteCSV renders one table as CSV, header first, totals row last.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll exports every view as <dir>/<name>.csv, writing the files
// concurrently.
func WriteAll(dir string, b core.ReportBundle) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	var g errgroup.Group
	for _, t := range Tables(b) {
		g.Go(func() error {
			path := filepath.Join(dir, t.Name+".csv")
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			if err := WriteCSV(f, t); err != nil {
				return fmt.Errorf("export %s: %w", t.Name, err)
			}
			return f.Close()
		})
	}
	return g.Wait()
}

func yen(v int64) string {
	return strconv.FormatInt(v, 10)
}
