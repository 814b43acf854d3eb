package service

import (
	"testing"

	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDefaultQuestionPoints(t *testing.T) {
	questions := []model.Question{
		{Type: model.QuestionTypeMultipleChoice, Content: "Q1", CorrectAnswer: "A", Points: 10},
		{Type: model.QuestionTypeTrueFalse, Content: "Q2", CorrectAnswer: "true"},
		{Type: model.QuestionTypeShortAnswer, Content: "Q3", CorrectAnswer: "key", Points: 0},
		{Type: model.QuestionTypeEssay, Content: "Q4", CorrectAnswer: "key", Points: -3},
	}

	defaultQuestionPoints(questions)

	assert.Equal(t, 10, questions[0].Points, "explicit points are kept")
	assert.Equal(t, 1, questions[1].Points, "omitted points default to 1")
	assert.Equal(t, 1, questions[2].Points, "zero points default to 1")
	assert.Equal(t, 1, questions[3].Points, "negative points default to 1")
}

func TestDefaultQuestionPointsFeedsTotalPoints(t *testing.T) {
	questions := []model.Question{
		{Type: model.QuestionTypeMultipleChoice, Content: "Q1", CorrectAnswer: "A", Points: 5},
		{Type: model.QuestionTypeTrueFalse, Content: "Q2", CorrectAnswer: "true"},
		{Type: model.QuestionTypeTrueFalse, Content: "Q3", CorrectAnswer: "false"},
	}

	defaultQuestionPoints(questions)

	assert.Equal(t, 7, sumPoints(questions))
}

func TestDefaultedQuestionIsWorthOnePoint(t *testing.T) {
	// A question created without points must still be winnable at grading
	// time: its default weight of 1 flows through to the score.
	exam := &model.Exam{
		PassScore: 1,
		Questions: []model.Question{
			{Type: model.QuestionTypeMultipleChoice, Content: "Q1", CorrectAnswer: "B"},
		},
	}
	defaultQuestionPoints(exam.Questions)

	answers, score := gradeAnswers(exam, []model.AnswerSubmission{
		{QuestionIndex: 0, Answer: "B"},
	})

	assert.Equal(t, 1, score)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, 1, answers[0].Points)
}
