package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

const unknownTeacher = "Unknown"

// matches "<Weekday> <HH:MM>-<HH:MM> <location>" anywhere in a line
var timetableLinePattern = regexp.MustCompile(
	`(?i)(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s+(\d{2}:\d{2})-(\d{2}:\d{2})\s+(.+)`,
)

// ParseTimetable turns recognized timetable text into candidate subjects.
//
// The second non-blank line is taken as the subject name for every slot
// found in the text: one image describes one subject. When that line is
// itself a slot, the first line is used instead. Only the weekday and
// the start time of each slot are kept. Text without any slot yields an
// empty result and no error.
func ParseTimetable(r io.Reader) ([]Candidate, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no timetable text", ErrInvalidInput)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read timetable text: %v", ErrInvalidInput, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: timetable text is not valid UTF-8", ErrInvalidInput)
	}

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	scanner.Buffer(make([]byte, 0, 64*1024), len(raw)+1)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to split timetable text: %v", ErrInvalidInput, err)
	}

	subjectName := subjectNameLine(lines)

	candidates := []Candidate{}
	for _, line := range lines {
		match := timetableLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		day, _ := ParseWeekday(match[1])
		candidates = append(candidates, Candidate{
			Name:    subjectName,
			Teacher: unknownTeacher,
			Time:    match[2],
			Days:    []Weekday{day},
		})
	}

	return candidates, nil
}

func subjectNameLine(lines []string) string {
	switch {
	case len(lines) > 1 && !timetableLinePattern.MatchString(lines[1]):
		return strings.TrimSpace(lines[1])
	case len(lines) > 0 && !timetableLinePattern.MatchString(lines[0]):
		return strings.TrimSpace(lines[0])
	default:
		return ""
	}
}

func ParseTimetableText(text string) ([]Candidate, error) {
	return ParseTimetable(strings.NewReader(text))
}
