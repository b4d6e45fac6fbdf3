// Package export renders batch extraction results as XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/payslip-extractor/internal/core"
	"github.com/joseph-ayodele/payslip-extractor/internal/entity"
)

const (
	SheetPayslips    = "Payslips"
	SheetCorrections = "Corrections"
)

// Row is one processed OCR dump.
type Row struct {
	Source  string
	Country string
	Result  *core.Result
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var headers = []string{
	"Source",
	"Country",
	"Status",
	"Method",
	"Coverage",
	"Validation Confidence",
	"Valid",
	"Employer",
	"Employee",
	"Period Start",
	"Period End",
	"Gross Pay",
	"Net Pay",
	"Total Deductions",
	"Warnings",
}

// PayslipsXLSX returns a workbook with one row per result and a sheet listing
// every correction the validator proposed.
func (s *Service) PayslipsXLSX(ctx context.Context, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetPayslips); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetCorrections); err != nil {
		return nil, err
	}

	writeRow(f, SheetPayslips, 1, toAny(headers)...)
	writeRow(f, SheetCorrections, 1, "Source", "Field", "Corrected Value")

	corrRow := 2
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeRow(f, SheetPayslips, i+2, payslipCells(r)...)

		if r.Result == nil || r.Result.Validation == nil {
			continue
		}
		for _, name := range entity.AmountFields() {
			v, ok := r.Result.Validation.Corrections[name]
			if !ok {
				continue
			}
			writeRow(f, SheetCorrections, corrRow, r.Source, string(name), v)
			corrRow++
		}
	}

	_ = f.SetColWidth(SheetPayslips, "A", "A", 36) // source
	_ = f.SetColWidth(SheetPayslips, "H", "I", 28) // names
	_ = f.SetColWidth(SheetPayslips, "J", "K", 12) // period
	_ = f.SetColWidth(SheetPayslips, "L", "N", 14) // amounts
	_ = f.SetColWidth(SheetPayslips, "O", "O", 80) // warnings
	_ = f.SetColWidth(SheetCorrections, "A", "A", 36)
	_ = f.SetColWidth(SheetCorrections, "B", "C", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"corrections", corrRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func payslipCells(r Row) []any {
	res := r.Result
	if res == nil || !res.Success || res.Data == nil {
		msg := "no result"
		if res != nil {
			msg = res.Error
		}
		return []any{r.Source, r.Country, "FAILED", "", "", "", "", "", "", "", "", "", "", "", truncate(msg, 500)}
	}
	d := res.Data
	valid, validation := "", any("")
	if res.Validation != nil {
		validation = res.Validation.Confidence
		valid = "no"
		if res.Validation.IsValid {
			valid = "yes"
		}
	}
	return []any{
		r.Source,
		string(d.Country),
		"OK",
		string(d.ExtractionMethod),
		d.ExtractionConfidence,
		validation,
		valid,
		text(d.EmployerName),
		text(d.EmployeeName),
		text(d.PeriodStart),
		text(d.PeriodEnd),
		amount(d.GrossPay),
		amount(d.NetPay),
		amount(d.TotalDeductions),
		truncate(strings.Join(res.Warnings, "; "), 500),
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func amount(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
