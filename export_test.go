package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type writtenText struct {
	page int
	x, y float64
	size float64
	text string
}

type recordingWriter struct {
	pages   int
	size    float64
	texts   []writtenText
	saved   string
	saveErr error
}

func (w *recordingWriter) SetFontSize(pt float64) { w.size = pt }

func (w *recordingWriter) WriteText(x, y float64, text string) {
	w.texts = append(w.texts, writtenText{page: w.pages, x: x, y: y, size: w.size, text: text})
}

func (w *recordingWriter) AddPage() { w.pages++ }

func (w *recordingWriter) Save(filename string) error {
	w.saved = filename
	return w.saveErr
}

func (w *recordingWriter) find(text string) (writtenText, bool) {
	for _, t := range w.texts {
		if t.text == text {
			return t, true
		}
	}
	return writtenText{}, false
}

func TestWriteScheduleLayout(t *testing.T) {
	w := &recordingWriter{}
	subjects := []Subject{{Name: "Intro to Systems", Teacher: "Unknown", Time: "09:00", Days: []Weekday{Monday, Wednesday}}}
	exams := []Exam{{Name: "Midterm", Date: "2026-04-10", Time: "13:00", Location: "Room 4"}}

	require.NoError(t, ExportDocument(w, "student_schedule.pdf", subjects, exams))

	want := []writtenText{
		{1, 20, 20, 16, "Student Schedule"},
		{1, 20, 40, 16, "Subjects"},
		{1, 20, 50, 12, "1. Intro to Systems"},
		{1, 20, 55, 12, "   Teacher: Unknown"},
		{1, 20, 60, 12, "   Days: monday, wednesday"},
		{1, 20, 65, 12, "   Time: 09:00"},
		{1, 20, 85, 16, "Exams"},
		{1, 20, 95, 12, "1. Midterm"},
		{1, 20, 100, 12, "   Date: 2026-04-10"},
		{1, 20, 105, 12, "   Time: 13:00"},
		{1, 20, 110, 12, "   Location: Room 4"},
	}
	assert.Equal(t, want, w.texts)
	assert.Equal(t, "student_schedule.pdf", w.saved)
}

func TestWriteSchedulePagination(t *testing.T) {
	var subjects []Subject
	for i := 1; i <= 10; i++ {
		subjects = append(subjects, Subject{Name: fmt.Sprintf("S%d", i), Teacher: "T", Time: "08:00", Days: []Weekday{Monday}})
	}
	exams := []Exam{{Name: "E1", Date: "2026-01-01", Time: "08:00", Location: "L"}}

	w := &recordingWriter{}
	WriteSchedule(w, subjects, exams)

	assert.Equal(t, 2, w.pages)

	last, ok := w.find("9. S9")
	require.True(t, ok)
	assert.Equal(t, 1, last.page)
	assert.Equal(t, 250.0, last.y)

	moved, ok := w.find("10. S10")
	require.True(t, ok)
	assert.Equal(t, 2, moved.page)
	assert.Equal(t, 20.0, moved.y)

	header, ok := w.find("Exams")
	require.True(t, ok)
	assert.Equal(t, 2, header.page)
	assert.Equal(t, 55.0, header.y)
}

func TestWriteScheduleKeepsHeaderWithFirstEntry(t *testing.T) {
	var subjects []Subject
	for i := 1; i <= 8; i++ {
		subjects = append(subjects, Subject{Name: fmt.Sprintf("S%d", i), Teacher: "T", Time: "08:00", Days: []Weekday{Monday}})
	}
	exams := []Exam{{Name: "E1", Date: "2026-01-01", Time: "08:00", Location: "L"}}

	w := &recordingWriter{}
	WriteSchedule(w, subjects, exams)

	assert.Equal(t, 2, w.pages)

	last, ok := w.find("8. S8")
	require.True(t, ok)
	assert.Equal(t, 1, last.page)
	assert.Equal(t, 225.0, last.y)

	header, ok := w.find("Exams")
	require.True(t, ok)
	assert.Equal(t, 2, header.page)
	assert.Equal(t, 20.0, header.y)

	first, ok := w.find("1. E1")
	require.True(t, ok)
	assert.Equal(t, 2, first.page)
	assert.Equal(t, 30.0, first.y)
}

func TestWriteScheduleNeverSplitsEntries(t *testing.T) {
	for n := 0; n < 40; n++ {
		subjects := make([]Subject, n)
		exams := make([]Exam, 40-n)

		w := &recordingWriter{}
		WriteSchedule(w, subjects, exams)

		for i := 0; i < len(w.texts); i++ {
			assert.LessOrEqual(t, w.texts[i].y, pageBottomY)
		}

		// the four lines of an entry share a page
		entries := 0
		for i := 0; i < len(w.texts); i++ {
			if w.texts[i].size != entryFontSize {
				continue
			}
			group := w.texts[i : i+linesPerEntry]
			for _, line := range group {
				assert.Equal(t, group[0].page, line.page)
			}
			i += linesPerEntry - 1
			entries++
		}
		assert.Equal(t, 40, entries)
	}
}

func TestExportDocumentFailure(t *testing.T) {
	w := &recordingWriter{saveErr: errors.New("read-only file system")}
	err := ExportDocument(w, "out.pdf", nil, nil)
	assert.ErrorIs(t, err, ErrExport)
}

func TestExportPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "student_schedule.pdf")
	require.NoError(t, ExportPDF(out, sampleSnapshot().Subjects, sampleSnapshot().Exams))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	err = ExportPDF(filepath.Join(t.TempDir(), "missing", "dir", "x.pdf"), nil, nil)
	assert.ErrorIs(t, err, ErrExport)
}

func TestExportPDFNonASCII(t *testing.T) {
	out := filepath.Join(t.TempDir(), "student_schedule.pdf")
	subjects := []Subject{{Name: "Ökonomie für Anfänger", Teacher: "Unknown", Time: "09:00", Days: []Weekday{Monday}}}

	w := NewPDFWriter()
	w.pdf.SetCompression(false)
	require.NoError(t, ExportDocument(w, out, subjects, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	// Helvetica is cp1252 encoded
	assert.True(t, bytes.Contains(data, []byte("\xd6konomie f\xfcr Anf\xe4nger")))
	assert.False(t, bytes.Contains(data, []byte("\xc3\x96")))
}

func TestExportXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "student_schedule.xlsx")
	snapshot := sampleSnapshot()
	require.NoError(t, ExportXLSX(out, snapshot.Subjects, snapshot.Exams))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Subjects", "Exams"}, f.GetSheetList())

	rows, err := f.GetRows("Subjects")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Teacher", "Days", "Time"},
		{"Intro to Systems", "Unknown", "monday, wednesday", "09:00"},
		{"Databases", "Dr. Codd", "", "11:15"},
	}, rows)

	rows, err = f.GetRows("Exams")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Date", "Time", "Location"},
		{"Systems Midterm", "2026-04-10", "13:00", "Room 4"},
	}, rows)
}
