package main

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// DocumentWriter places text on paginated pages. Coordinates are millimetres
// from the top-left corner of the page.
type DocumentWriter interface {
	SetFontSize(pt float64)
	WriteText(x, y float64, text string)
	AddPage()
	Save(filename string) error
}

// page layout
const (
	marginLeft      = 20.0
	titleY          = 20.0
	contentStartY   = 40.0
	pageTopY        = 20.0
	pageBottomY     = 270.0
	headerAdvance   = 10.0
	lineAdvance     = 5.0
	entryAdvance    = 10.0
	sectionSpacing  = 10.0
	titleFontSize   = 16.0
	headerFontSize  = 16.0
	entryFontSize   = 12.0
	linesPerEntry   = 4
	entryTextHeight = (linesPerEntry - 1) * lineAdvance
)

type documentLayout struct {
	w DocumentWriter
	y float64
}

// ensureRoom starts a new page when text reaching height below the cursor
// would cross the page bottom.
func (l *documentLayout) ensureRoom(height float64) {
	if l.y+height > pageBottomY {
		l.w.AddPage()
		l.y = pageTopY
	}
}

func (l *documentLayout) section(title string, entries [][linesPerEntry]string) {
	// keep the header on the page of its first entry
	l.ensureRoom(headerAdvance + entryTextHeight)
	l.w.SetFontSize(headerFontSize)
	l.w.WriteText(marginLeft, l.y, title)
	l.y += headerAdvance

	l.w.SetFontSize(entryFontSize)
	for _, lines := range entries {
		// an entry is never split across pages
		l.ensureRoom(entryTextHeight)
		for i, line := range lines {
			l.w.WriteText(marginLeft, l.y, line)
			if i < len(lines)-1 {
				l.y += lineAdvance
			}
		}
		l.y += entryAdvance
	}
}

// WriteSchedule lays subjects and exams out on w. It does not save w.
func WriteSchedule(w DocumentWriter, subjects []Subject, exams []Exam) {
	w.AddPage()
	w.SetFontSize(titleFontSize)
	w.WriteText(marginLeft, titleY, "Student Schedule")

	layout := &documentLayout{w: w, y: contentStartY}

	subjectEntries := make([][linesPerEntry]string, 0, len(subjects))
	for i, s := range subjects {
		subjectEntries = append(subjectEntries, [linesPerEntry]string{
			fmt.Sprintf("%d. %s", i+1, s.Name),
			fmt.Sprintf("   Teacher: %s", s.Teacher),
			fmt.Sprintf("   Days: %s", joinDays(s.Days)),
			fmt.Sprintf("   Time: %s", s.Time),
		})
	}
	layout.section("Subjects", subjectEntries)

	layout.y += sectionSpacing

	examEntries := make([][linesPerEntry]string, 0, len(exams))
	for i, e := range exams {
		examEntries = append(examEntries, [linesPerEntry]string{
			fmt.Sprintf("%d. %s", i+1, e.Name),
			fmt.Sprintf("   Date: %s", e.Date),
			fmt.Sprintf("   Time: %s", e.Time),
			fmt.Sprintf("   Location: %s", e.Location),
		})
	}
	layout.section("Exams", examEntries)
}

// ExportPDF writes the schedule to filename as a PDF document.
func ExportPDF(filename string, subjects []Subject, exams []Exam) error {
	return ExportDocument(NewPDFWriter(), filename, subjects, exams)
}

func ExportDocument(w DocumentWriter, filename string, subjects []Subject, exams []Exam) error {
	WriteSchedule(w, subjects, exams)
	if err := w.Save(filename); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

// PDFWriter is a DocumentWriter producing A4 portrait PDF pages.
type PDFWriter struct {
	pdf *fpdf.Fpdf
	// core fonts take cp1252, text arrives as UTF-8
	tr func(string) string
}

func NewPDFWriter() *PDFWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", titleFontSize)
	pdf.SetAutoPageBreak(false, 0)
	return &PDFWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (p *PDFWriter) SetFontSize(pt float64) {
	p.pdf.SetFontSize(pt)
}

func (p *PDFWriter) WriteText(x, y float64, text string) {
	p.pdf.Text(x, y, p.tr(text))
}

func (p *PDFWriter) AddPage() {
	p.pdf.AddPage()
}

func (p *PDFWriter) Save(filename string) error {
	if err := p.pdf.OutputFileAndClose(filename); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// ExportXLSX writes subjects and exams to separate sheets of a workbook.
func ExportXLSX(filename string, subjects []Subject, exams []Exam) error {
	f := excelize.NewFile()
	defer f.Close()

	subjectRows := make([][]any, 0, len(subjects))
	for _, s := range subjects {
		subjectRows = append(subjectRows, []any{s.Name, s.Teacher, joinDays(s.Days), s.Time})
	}
	if err := writeSheet(f, "Subjects", []string{"Name", "Teacher", "Days", "Time"}, subjectRows); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	examRows := make([][]any, 0, len(exams))
	for _, e := range exams {
		examRows = append(examRows, []any{e.Name, e.Date, e.Time, e.Location})
	}
	if err := writeSheet(f, "Exams", []string{"Name", "Date", "Time", "Location"}, examRows); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	// the default sheet is empty once ours exist
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	if index, err := f.GetSheetIndex("Subjects"); err == nil {
		f.SetActiveSheet(index)
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("%w: failed to write xlsx: %w", ErrExport, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheetName string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}
