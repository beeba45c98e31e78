package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ReportCard describes the content of a printable student report card.
type ReportCard struct {
	SchoolName  string
	StudentName string
	SchoolYear  string
	Semester    string
	Rows        []ReportCardRow
}

// ReportCardRow is one subject line.
type ReportCardRow struct {
	SubjectCode string
	SubjectName string
	Prelim      string
	Midterm     string
	Finals      string
	FinalGrade  string
	Remarks     string
}

// ReportCardExporter renders report cards as PDF documents.
type ReportCardExporter struct{}

// NewReportCardExporter constructs the exporter.
func NewReportCardExporter() *ReportCardExporter {
	return &ReportCardExporter{}
}

// Render produces the report card PDF bytes.
func (e *ReportCardExporter) Render(card ReportCard) ([]byte, error) {
	if card.StudentName == "" {
		return nil, fmt.Errorf("report card requires a student name")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if card.SchoolName != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(card.SchoolName), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "REPORT CARD", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, "Student: "+card.StudentName, "", 0, "", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Term: %s %s", card.SchoolYear, card.Semester), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	headers := []string{"Code", "Subject", "Prelim", "Midterm", "Finals", "Final", "Remarks"}
	widths := []float64{20, 60, 20, 20, 20, 20, 30}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range card.Rows {
		cells := []string{row.SubjectCode, row.SubjectName, row.Prelim, row.Midterm, row.Finals, row.FinalGrade, row.Remarks}
		for i, value := range cells {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report card: %w", err)
	}
	return buf.Bytes(), nil
}
