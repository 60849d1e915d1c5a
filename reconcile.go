package main

import (
	"regexp"

	"github.com/google/uuid"
)

const (
	defaultImportName    = "Unknown Name"
	defaultImportTeacher = "Unknown Teacher"
	defaultImportTime    = "00:00"
)

var clockTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsClockTime reports whether value is a strict 24-hour HH:MM time.
func IsClockTime(value string) bool {
	return clockTimePattern.MatchString(value)
}

// Reconcile fills in missing candidate fields, gives every candidate a fresh
// identifier and appends the results to existing. Existing subjects are
// never deduplicated against.
func Reconcile(candidates []Candidate, existing []Subject) []Subject {
	return reconcile(candidates, existing, uuid.NewString)
}

func reconcile(candidates []Candidate, existing []Subject, newID func() string) []Subject {
	merged := make([]Subject, 0, len(existing)+len(candidates))
	merged = append(merged, existing...)

	for _, c := range candidates {
		subject := Subject{
			ID:      newID(),
			Name:    c.Name,
			Teacher: c.Teacher,
			Time:    c.Time,
			Days:    append([]Weekday{}, c.Days...),
		}
		if subject.Name == "" {
			subject.Name = defaultImportName
		}
		if subject.Teacher == "" {
			subject.Teacher = defaultImportTeacher
		}
		if !IsClockTime(subject.Time) {
			subject.Time = defaultImportTime
		}
		merged = append(merged, subject)
	}

	return merged
}
