package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nexidian/gocliselect"
)

const (
	noMatchMessage     = "No subjects could be extracted from the image. Please check the image format."
	importErrorMessage = "Error processing image. Please try again."
)

type MenuItem struct {
	Label string
	ID    string
}

// PickFunc asks the user to choose one item and returns its ID, or "" when
// nothing was chosen.
type PickFunc func(title string, items []MenuItem) (string, error)

func pickFromMenu(title string, items []MenuItem) (string, error) {
	menu := gocliselect.NewMenu(title)
	for _, item := range items {
		menu.AddItem(item.Label, item.ID)
	}

	choice, err := menu.Display()
	if err != nil {
		return "", fmt.Errorf("failed to show menu: %w", err)
	}

	// escape yields an empty choice
	id, _ := choice.(string)
	return id, nil
}

type App struct {
	cfg       *Config
	store     *Store
	validator *Validator
	logger    *slog.Logger
	out       io.Writer

	newRecognizer func(ctx context.Context) (Recognizer, error)
	pick          PickFunc
}

func NewApp(cfg *Config, store *Store, logger *slog.Logger, out io.Writer) (*App, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to set up validator: %w", err)
	}

	return &App{
		cfg:       cfg,
		store:     store,
		validator: v,
		logger:    logger,
		out:       out,
		newRecognizer: func(ctx context.Context) (Recognizer, error) {
			return NewRecognizer(ctx, cfg)
		},
		pick: pickFromMenu,
	}, nil
}

// +---------------------+
// |                     |
// |      Subjects       |
// |                     |
// +---------------------+

func (a *App) AddSubject(name, teacher, clock string, days []string) error {
	subject := Subject{
		Name:    strings.TrimSpace(name),
		Teacher: strings.TrimSpace(teacher),
		Time:    strings.TrimSpace(clock),
		Days:    make([]Weekday, 0, len(days)),
	}
	for _, d := range days {
		day := Weekday(strings.ToLower(strings.TrimSpace(d)))
		// days form a set
		if !subject.HasDay(day) {
			subject.Days = append(subject.Days, day)
		}
	}

	if err := a.validator.Subject(subject); err != nil {
		return err
	}

	added, err := a.store.AddSubject(subject)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added subject %s (%s)\n", added.Name, added.ID)
	return nil
}

func (a *App) ListSubjects() {
	subjects := a.store.Subjects()
	if len(subjects) == 0 {
		fmt.Fprintln(a.out, "No subjects yet.")
		return
	}

	headers := []string{"ID", "Name", "Teacher", "Days", "Time"}
	var rows [][]string
	for _, s := range subjects {
		rows = append(rows, []string{s.ID, s.Name, s.Teacher, joinDays(s.Days), s.Time})
	}
	PrintTable(a.out, headers, rows, nil)
}

// RemoveSubject removes the subject with id, or one picked from a menu when
// id is empty.
func (a *App) RemoveSubject(id string) error {
	if id == "" {
		var items []MenuItem
		for _, s := range a.store.Subjects() {
			items = append(items, MenuItem{Label: fmt.Sprintf("%s - %s %s", s.Name, joinDays(s.Days), s.Time), ID: s.ID})
		}
		picked, err := a.pickID("Select subject to remove", items)
		if err != nil {
			return err
		}
		if id = picked; id == "" {
			return nil
		}
	}

	removed, err := a.store.RemoveSubject(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("subject %s not found", id)
	}

	fmt.Fprintf(a.out, "Removed subject %s\n", id)
	return nil
}

// +---------------------+
// |                     |
// |        Exams        |
// |                     |
// +---------------------+

func (a *App) AddExam(name, date, clock, location string) error {
	exam := Exam{
		Name:     strings.TrimSpace(name),
		Date:     strings.TrimSpace(date),
		Time:     strings.TrimSpace(clock),
		Location: strings.TrimSpace(location),
	}

	if err := a.validator.Exam(exam); err != nil {
		return err
	}

	added, err := a.store.AddExam(exam)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added exam %s (%s)\n", added.Name, added.ID)
	return nil
}

func (a *App) ListExams() {
	exams := a.store.Exams()
	if len(exams) == 0 {
		fmt.Fprintln(a.out, "No exams yet.")
		return
	}

	headers := []string{"ID", "Name", "Date", "Time", "Location"}
	var rows [][]string
	for _, e := range exams {
		rows = append(rows, []string{e.ID, e.Name, e.Date, e.Time, e.Location})
	}
	PrintTable(a.out, headers, rows, nil)
}

func (a *App) RemoveExam(id string) error {
	if id == "" {
		var items []MenuItem
		for _, e := range a.store.Exams() {
			items = append(items, MenuItem{Label: fmt.Sprintf("%s - %s %s", e.Name, e.Date, e.Time), ID: e.ID})
		}
		picked, err := a.pickID("Select exam to remove", items)
		if err != nil {
			return err
		}
		if id = picked; id == "" {
			return nil
		}
	}

	removed, err := a.store.RemoveExam(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("exam %s not found", id)
	}

	fmt.Fprintf(a.out, "Removed exam %s\n", id)
	return nil
}

func (a *App) pickID(title string, items []MenuItem) (string, error) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nothing to remove.")
		return "", nil
	}
	return a.pick(title, items)
}

// +---------------------+
// |                     |
// |      Schedule       |
// |                     |
// +---------------------+

func (a *App) ShowSchedule() {
	byDay := GroupByDayMap(a.store.Subjects())
	if len(byDay) == 0 {
		fmt.Fprintln(a.out, "No subjects scheduled.")
	}

	for _, day := range Weekdays {
		subjects, ok := byDay[day]
		if !ok {
			continue
		}
		fmt.Fprintf(a.out, "%s\n", day.Title())

		headers := []string{"Time", "Subject", "Teacher"}
		var rows [][]string
		for _, s := range subjects {
			rows = append(rows, []string{s.Time, s.Name, s.Teacher})
		}
		PrintTable(a.out, headers, rows, nil)
		fmt.Fprintln(a.out)
	}

	exams := a.store.Exams()
	if len(exams) == 0 {
		return
	}

	fmt.Fprintln(a.out, "Exams")
	headers := []string{"Date", "Time", "Exam", "Location"}
	var rows [][]string
	for _, e := range exams {
		rows = append(rows, []string{e.Date, e.Time, e.Name, e.Location})
	}
	PrintTable(a.out, headers, rows, nil)
}

// +---------------------+
// |                     |
// |       Import        |
// |                     |
// +---------------------+

// ImportImage recognizes the timetable in the image at path and merges the
// subjects found into the schedule.
func (a *App) ImportImage(ctx context.Context, path string) error {
	image, mimeType, err := ReadImage(path)
	if err != nil {
		return a.importFailed(err)
	}

	recognizer, err := a.newRecognizer(ctx)
	if err != nil {
		return a.importFailed(recognitionFailure(err))
	}
	defer recognizer.Close()

	fmt.Fprintln(a.out, "Processing image...")
	text, err := recognizer.Recognize(ctx, image, mimeType)
	if err != nil {
		return a.importFailed(recognitionFailure(err))
	}
	a.logger.Debug("recognized timetable text", "bytes", len(text))

	candidates, err := ParseTimetableText(text)
	if err != nil {
		return a.importFailed(err)
	}
	return a.merge(candidates)
}

// recognitionFailure wraps err in ErrRecognition unless it already is one.
func recognitionFailure(err error) error {
	if errors.Is(err, ErrRecognition) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRecognition, err)
}

// ImportText merges subjects from already recognized timetable text. A path
// of "-" reads standard input.
func (a *App) ImportText(path string) error {
	if path == "-" {
		return a.importText(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return a.importFailed(fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	defer f.Close()

	return a.importText(f)
}

func (a *App) importText(r io.Reader) error {
	candidates, err := ParseTimetable(r)
	if err != nil {
		return a.importFailed(err)
	}
	return a.merge(candidates)
}

func (a *App) merge(candidates []Candidate) error {
	if len(candidates) == 0 {
		fmt.Fprintln(a.out, noMatchMessage)
		return ErrNoMatchFound
	}

	added, err := a.store.Import(candidates)
	if err != nil {
		return a.importFailed(err)
	}

	fmt.Fprintf(a.out, "Imported %d subject(s):\n", len(added))
	for _, s := range added {
		fmt.Fprintf(a.out, "  %s - %s %s\n", s.Name, joinDays(s.Days), s.Time)
	}
	return nil
}

func (a *App) importFailed(err error) error {
	return fmt.Errorf("%s %w", importErrorMessage, err)
}

// +---------------------+
// |                     |
// |       Export        |
// |                     |
// +---------------------+

// Export writes the schedule as format ("pdf" or "xlsx") to output, or to the
// configured file name when output is empty.
func (a *App) Export(format, output string) error {
	format = strings.ToLower(format)
	if output == "" {
		output = a.cfg.Export.Filename + "." + format
	}

	subjects, exams := a.store.Subjects(), a.store.Exams()

	var err error
	switch format {
	case "pdf":
		err = ExportPDF(output, subjects, exams)
	case "xlsx":
		err = ExportXLSX(output, subjects, exams)
	default:
		return fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Schedule exported to %s\n", output)
	return nil
}
