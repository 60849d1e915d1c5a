package main

import "sort"

// DaySchedule is the subjects held on one weekday, earliest first.
type DaySchedule struct {
	Day      Weekday
	Subjects []Subject
}

// GroupByDay projects subjects onto the week in Monday..Sunday order.
// Weekdays without subjects are left out.
func GroupByDay(subjects []Subject) []DaySchedule {
	var week []DaySchedule

	for _, day := range Weekdays {
		var daySubjects []Subject
		for _, subject := range subjects {
			if subject.HasDay(day) {
				daySubjects = append(daySubjects, subject)
			}
		}
		if len(daySubjects) == 0 {
			continue
		}

		// HH:MM sorts correctly as a string
		sort.SliceStable(daySubjects, func(i, j int) bool {
			return daySubjects[i].Time < daySubjects[j].Time
		})
		week = append(week, DaySchedule{Day: day, Subjects: daySubjects})
	}

	return week
}

// GroupByDayMap is GroupByDay keyed by weekday.
func GroupByDayMap(subjects []Subject) map[Weekday][]Subject {
	byDay := make(map[Weekday][]Subject)
	for _, ds := range GroupByDay(subjects) {
		byDay[ds.Day] = ds.Subjects
	}
	return byDay
}
