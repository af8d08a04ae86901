package expense

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/frahmantamala/expensehub/pkg/money"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

var exportHeader = []string{"ID", "Date", "Project", "Employee", "Description", "Amount", "Currency", "Status", "Decided At"}

// ContentType returns the MIME type and file extension for format, or false
// when the format is unknown.
func ContentType(format string) (string, bool) {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true
	case FormatCSV:
		return "text/csv; charset=utf-8", true
	case FormatPDF:
		return "application/pdf", true
	}
	return "", false
}

// Export writes expenses to w in format.
func Export(w io.Writer, format string, expenses []*Expense) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, expenses)
	case FormatCSV:
		return writeCSV(w, expenses)
	case FormatPDF:
		return writePDF(w, expenses)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func exportRow(e *Expense) []string {
	decided := ""
	if e.DecidedAt != nil {
		decided = e.DecidedAt.UTC().Format("2006-01-02 15:04")
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.ExpenseDate.Format("2006-01-02"),
		strconv.FormatInt(e.ProjectID, 10),
		strconv.FormatInt(e.EmployeeID, 10),
		e.Description,
		money.Format(e.Amount, e.Currency),
		e.Currency,
		e.Status,
		decided,
	}
}

func writeXLSX(w io.Writer, expenses []*Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Expenses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	_ = f.SetCellStyle(sheet, "A1", "I1", headerStyle)

	for i, e := range expenses {
		row := i + 2
		values := []any{
			e.ID,
			e.ExpenseDate.Format("2006-01-02"),
			e.ProjectID,
			e.EmployeeID,
			e.Description,
			money.Major(e.Amount),
			e.Currency,
			e.Status,
			"",
		}
		if e.DecidedAt != nil {
			values[8] = e.DecidedAt.UTC().Format("2006-01-02 15:04")
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "E", "E", 40)

	_, err = f.WriteTo(w)
	return err
}

func writeCSV(w io.Writer, expenses []*Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		if err := cw.Write(exportRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, expenses []*Expense) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Expenses")
	pdf.Ln(12)

	widths := []float64{14, 24, 18, 20, 90, 32, 18, 26, 32}
	pdf.SetFont("Arial", "B", 9)
	for i, title := range exportHeader {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, e := range expenses {
		for i, v := range exportRow(e) {
			if r := []rune(v); i == 4 && len(r) > 55 {
				v = string(r[:52]) + "..."
			}
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
