package quiz

// Grade scores answers against the quiz. answers[i] is the chosen option for
// question i, or Unanswered. Percent is rounded down.
func Grade(q *Quiz, answers []int) (*Result, error) {
	if len(answers) != len(q.Questions) {
		return nil, ErrAnswerCount
	}

	res := &Result{
		QuizID:  q.ID,
		Total:   len(q.Questions),
		Answers: make([]AnswerResult, len(q.Questions)),
	}
	for i, question := range q.Questions {
		selected := answers[i]
		if selected != Unanswered && (selected < 0 || selected >= len(question.Options)) {
			return nil, ErrInvalidAnswer
		}

		correct := selected == question.AnswerIndex
		if correct {
			res.Score++
		}
		res.Answers[i] = AnswerResult{
			Selected:    selected,
			Correct:     correct,
			AnswerIndex: question.AnswerIndex,
			Explanation: question.Explanation,
		}
	}

	if res.Total > 0 {
		res.Percent = res.Score * 100 / res.Total
	}
	res.Passed = res.Percent >= q.PassingScore
	return res, nil
}
