package service

import (
	"testing"

	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCourseTotals(t *testing.T) {
	chapters := []model.Chapter{
		{
			Title: "Fundamentals",
			Lessons: []model.Lesson{
				{Title: "Intro", DurationMinutes: 15},
				{Title: "Doctrine", DurationMinutes: 45},
			},
		},
		{
			Title: "Field Work",
			Lessons: []model.Lesson{
				{Title: "Map Reading", DurationMinutes: 30},
			},
		},
		{Title: "Empty Chapter"},
	}

	lessons, duration := courseTotals(chapters)
	assert.Equal(t, 3, lessons)
	assert.Equal(t, 90, duration)
}

func TestCourseTotalsEmpty(t *testing.T) {
	lessons, duration := courseTotals(nil)
	assert.Zero(t, lessons)
	assert.Zero(t, duration)
}

func TestSumPoints(t *testing.T) {
	questions := []model.Question{{Points: 10}, {Points: 5}, {Points: 0}}
	assert.Equal(t, 15, sumPoints(questions))
	assert.Zero(t, sumPoints(nil))
}
