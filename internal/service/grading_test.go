package service

import (
	"testing"

	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func gradingExam() *model.Exam {
	return &model.Exam{
		TotalPoints: 30,
		Questions: []model.Question{
			{Type: model.QuestionTypeMultipleChoice, CorrectAnswer: "B", Points: 10},
			{Type: model.QuestionTypeTrueFalse, CorrectAnswer: "true", Points: 5},
			{Type: model.QuestionTypeShortAnswer, CorrectAnswer: "clausewitz", Points: 10},
			{Type: model.QuestionTypeEssay, CorrectAnswer: "n/a", Points: 5},
		},
	}
}

func TestGradeAnswersChoiceTypes(t *testing.T) {
	answers, points := gradeAnswers(gradingExam(), []model.AnswerSubmission{
		{QuestionIndex: 0, Answer: "B"},
		{QuestionIndex: 1, Answer: "false"},
	})

	assert.Equal(t, 10, points)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, 10, answers[0].Points)
	assert.False(t, answers[1].IsCorrect)
	assert.Equal(t, 0, answers[1].Points)
}

func TestGradeAnswersCaseSensitive(t *testing.T) {
	answers, points := gradeAnswers(gradingExam(), []model.AnswerSubmission{
		{QuestionIndex: 0, Answer: "b"},
	})

	assert.Equal(t, 0, points)
	assert.False(t, answers[0].IsCorrect)
}

func TestGradeAnswersFreeTextScoresZero(t *testing.T) {
	// Exact matches on free-text types still score zero: they are graded
	// manually, never automatically.
	answers, points := gradeAnswers(gradingExam(), []model.AnswerSubmission{
		{QuestionIndex: 2, Answer: "clausewitz"},
		{QuestionIndex: 3, Answer: "n/a"},
	})

	assert.Equal(t, 0, points)
	assert.False(t, answers[0].IsCorrect)
	assert.False(t, answers[1].IsCorrect)
}

func TestGradeAnswersOutOfRangeIndex(t *testing.T) {
	answers, points := gradeAnswers(gradingExam(), []model.AnswerSubmission{
		{QuestionIndex: -1, Answer: "B"},
		{QuestionIndex: 4, Answer: "B"},
	})

	assert.Equal(t, 0, points)
	assert.Len(t, answers, 2, "out-of-range answers are kept, not dropped")
	assert.Equal(t, -1, answers[0].QuestionIndex)
	assert.Equal(t, 4, answers[1].QuestionIndex)
}

func TestGradeAnswersEmptySubmission(t *testing.T) {
	answers, points := gradeAnswers(gradingExam(), nil)
	assert.Empty(t, answers)
	assert.Equal(t, 0, points)
}
