package service

import "github.com/smartmlms/smartlms-backend/internal/model"

// gradeAnswers grades a submission against the exam's canonical question
// list. QuestionIndex refers to the canonical order, never the shuffled
// display order. Answers referencing an index outside the question list are
// kept as zero-point wrong answers rather than rejected.
func gradeAnswers(exam *model.Exam, submissions []model.AnswerSubmission) ([]model.Answer, int) {
	answers := make([]model.Answer, 0, len(submissions))
	score := 0

	for _, sub := range submissions {
		graded := model.Answer{
			QuestionIndex: sub.QuestionIndex,
			Answer:        sub.Answer,
		}

		if sub.QuestionIndex >= 0 && sub.QuestionIndex < len(exam.Questions) {
			q := exam.Questions[sub.QuestionIndex]
			switch q.Type {
			case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
				// Exact match, case-sensitive.
				if sub.Answer == q.CorrectAnswer {
					graded.IsCorrect = true
					graded.Points = q.Points
					score += q.Points
				}
			case model.QuestionTypeShortAnswer, model.QuestionTypeEssay:
				// Free-text types require manual grading and contribute
				// nothing to the automatic score.
			}
		}

		answers = append(answers, graded)
	}

	return answers, score
}
