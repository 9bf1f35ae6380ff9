package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// exportColumn is one exportable field
type exportColumn struct {
	Key    string
	Header string
	Width  float64
	Value  func(r *models.IdleResourceResponse) string
}

var exportColumns = []exportColumn{
	{"id", "ID", 62, func(r *models.IdleResourceResponse) string { return r.ID }},
	{"employeeNumber", "Employee No.", 24, func(r *models.IdleResourceResponse) string { return r.EmployeeNumber }},
	{"employeeName", "Employee Name", 40, func(r *models.IdleResourceResponse) string { return r.EmployeeName }},
	{"departmentId", "Department", 20, func(r *models.IdleResourceResponse) string { return optUint(r.DepartmentID) }},
	{"resourceType", "Resource Type", 24, func(r *models.IdleResourceResponse) string { return r.ResourceType }},
	{"status", "Status", 22, func(r *models.IdleResourceResponse) string { return r.Status }},
	{"availabilityStart", "Available From", 24, func(r *models.IdleResourceResponse) string { return optDate(r.AvailabilityStart) }},
	{"availabilityEnd", "Available Until", 24, func(r *models.IdleResourceResponse) string { return optDate(r.AvailabilityEnd) }},
	{"skills", "Skills", 50, func(r *models.IdleResourceResponse) string { return strings.Join(r.Skills, ", ") }},
	{"experienceYears", "Experience (y)", 20, func(r *models.IdleResourceResponse) string { return strconv.Itoa(r.ExperienceYears) }},
	{"hourlyRate", "Hourly Rate", 20, func(r *models.IdleResourceResponse) string { return optFloat(r.HourlyRate) }},
	{"version", "Version", 14, func(r *models.IdleResourceResponse) string { return strconv.Itoa(r.Version) }},
	{"createdAt", "Created At", 36, func(r *models.IdleResourceResponse) string { return r.CreatedAt.UTC().Format(time.RFC3339) }},
}

// defaultPDFColumns keeps the landscape page readable
var defaultPDFColumns = []string{
	"employeeNumber", "employeeName", "resourceType", "status",
	"availabilityStart", "availabilityEnd", "skills", "experienceYears",
}

func columnsByKey(keys []string) ([]exportColumn, []string) {
	index := make(map[string]exportColumn, len(exportColumns))
	for _, c := range exportColumns {
		index[c.Key] = c
	}
	var cols []exportColumn
	var unknown []string
	for _, k := range keys {
		c, ok := index[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		cols = append(cols, c)
	}
	return cols, unknown
}

func exportKeys() []string {
	keys := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		keys[i] = c.Key
	}
	return keys
}

// writeCSV writes a header row plus one row per record
func writeCSV(path string, cols []exportColumn, records []*models.IdleResourceResponse) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Value(r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeExcel writes one sheet with a bold header row
func writeExcel(path string, cols []exportColumn, records []*models.IdleResourceResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Idle Resources"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, c.Header)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, c.Width/2.5)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for row, r := range records {
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
			f.SetCellValue(sheet, cell, c.Value(r))
		}
	}

	return f.SaveAs(path)
}

// writeJSON writes the records with only the selected columns
func writeJSON(path string, cols []exportColumn, records []*models.IdleResourceResponse) error {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		row := make(map[string]string, len(cols))
		for _, c := range cols {
			row[c.Key] = c.Value(r)
		}
		rows = append(rows, row)
	}

	b, err := json.MarshalIndent(map[string]interface{}{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"recordCount": len(rows),
		"records":     rows,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// writePDF renders a landscape table report
func writePDF(path string, cols []exportColumn, records []*models.IdleResourceResponse) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Idle Resources Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s - %d record(s)", time.Now().UTC().Format("02-Jan-2006 15:04 MST"), len(records)))
	pdf.Ln(10)

	// scale column widths to the printable width
	printable := 277.0
	total := 0.0
	for _, c := range cols {
		total += c.Width
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = c.Width * printable / total
	}

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		for i, c := range cols {
			pdf.CellFormat(widths[i], 7, c.Header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	for _, r := range records {
		if pdf.GetY() > 190 {
			pdf.AddPage()
			header()
		}
		for i, c := range cols {
			pdf.CellFormat(widths[i], 6, fitText(pdf, c.Value(r), widths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.OutputFileAndClose(path)
}

// fitText truncates s so it fits into width
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width-2 {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width-2 {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func optDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func optUint(v *uint) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}
