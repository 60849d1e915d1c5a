package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDay(t *testing.T) {
	subjects := []Subject{
		{ID: "1", Name: "Late", Time: "15:00", Days: []Weekday{Monday, Friday}},
		{ID: "2", Name: "Early", Time: "08:30", Days: []Weekday{Monday}},
		{ID: "3", Name: "Weekend", Time: "10:00", Days: []Weekday{Sunday}},
		{ID: "4", Name: "Unscheduled", Time: "09:00", Days: []Weekday{}},
		{ID: "5", Name: "Noon", Time: "12:00", Days: []Weekday{Friday}},
	}

	week := GroupByDay(subjects)

	require.Len(t, week, 3)
	assert.Equal(t, Monday, week[0].Day)
	assert.Equal(t, Friday, week[1].Day)
	assert.Equal(t, Sunday, week[2].Day)

	ids := func(ss []Subject) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.ID)
		}
		return out
	}
	assert.Equal(t, []string{"2", "1"}, ids(week[0].Subjects))
	assert.Equal(t, []string{"5", "1"}, ids(week[1].Subjects))
	assert.Equal(t, []string{"3"}, ids(week[2].Subjects))
}

func TestGroupByDayMembership(t *testing.T) {
	subjects := []Subject{
		{ID: "a", Time: "09:00", Days: []Weekday{Tuesday, Thursday, Saturday}},
		{ID: "b", Time: "09:00", Days: []Weekday{Thursday}},
		{ID: "c", Time: "07:00", Days: []Weekday{}},
		{ID: "d", Time: "23:59", Days: Weekdays},
	}

	byDay := GroupByDayMap(subjects)

	// every subject appears exactly once under each of its days and nowhere else
	counts := make(map[string]int)
	for day, daySubjects := range byDay {
		assert.NotEmpty(t, daySubjects)
		for _, s := range daySubjects {
			assert.True(t, s.HasDay(day), "%s listed under %s", s.ID, day)
			counts[s.ID]++
		}
	}
	for _, s := range subjects {
		assert.Equal(t, len(s.Days), counts[s.ID], s.ID)
	}

	assert.Len(t, byDay, 7)
	assert.Equal(t, "b", byDay[Thursday][1].ID)
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
	assert.Empty(t, GroupByDayMap([]Subject{{ID: "x", Time: "10:00"}}))
}
