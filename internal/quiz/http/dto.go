package http

import (
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/quiz"
)

// QuestionResponse omits the answer unless the viewer owns the quiz.
type QuestionResponse struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex *int     `json:"answer_index,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

type Response struct {
	ID           string             `json:"id"`
	ProviderID   string             `json:"provider_id"`
	LessonID     *string            `json:"lesson_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	Difficulty   string             `json:"difficulty"`
	Questions    []QuestionResponse `json:"questions"`
	PassingScore int                `json:"passing_score"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewResponse(q *quiz.Quiz, withAnswers bool) Response {
	questions := make([]QuestionResponse, len(q.Questions))
	for i, question := range q.Questions {
		qr := QuestionResponse{Prompt: question.Prompt, Options: question.Options}
		if withAnswers {
			answer := question.AnswerIndex
			qr.AnswerIndex = &answer
			qr.Explanation = question.Explanation
		}
		questions[i] = qr
	}
	return Response{
		ID:           q.ID,
		ProviderID:   q.ProviderID,
		LessonID:     q.LessonID,
		Title:        q.Title,
		Description:  q.Description,
		Category:     q.Category,
		Difficulty:   string(q.Difficulty),
		Questions:    questions,
		PassingScore: q.PassingScore,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

type ListRequest struct {
	request.ListParams
	Query      string `form:"q" binding:"max=200"`
	Category   string `form:"category" binding:"max=50"`
	Difficulty string `form:"difficulty" binding:"omitempty,difficulty"`
	LessonID   string `form:"lesson_id" binding:"omitempty,uuid"`
}

func (r *ListRequest) Filter() quiz.Filter {
	r.Normalize()
	return quiz.Filter{
		Query:      r.Query,
		Category:   r.Category,
		Difficulty: lesson.Difficulty(r.Difficulty),
		LessonID:   r.LessonID,
		ListParams: r.ListParams,
	}
}

type QuestionBody struct {
	Prompt      string   `json:"prompt" binding:"required,notblank,max=500"`
	Options     []string `json:"options" binding:"required,min=2,max=6,dive,required,notblank,max=200"`
	AnswerIndex *int     `json:"answer_index" binding:"required,min=0"`
	Explanation string   `json:"explanation" binding:"max=1000"`
}

type QuizBody struct {
	LessonID     *string        `json:"lesson_id" binding:"omitempty,uuid"`
	Title        string         `json:"title" binding:"required,notblank,max=200"`
	Description  string         `json:"description" binding:"max=1000"`
	Category     string         `json:"category" binding:"required,notblank,max=50"`
	Difficulty   string         `json:"difficulty" binding:"omitempty,difficulty"`
	Questions    []QuestionBody `json:"questions" binding:"required,min=1,max=50,dive"`
	PassingScore *int           `json:"passing_score" binding:"omitempty,min=0,max=100"`
}

func (b QuizBody) Input() quiz.Input {
	in := quiz.Input{
		LessonID:     b.LessonID,
		Title:        b.Title,
		Description:  b.Description,
		Category:     b.Category,
		Difficulty:   lesson.Difficulty(b.Difficulty),
		PassingScore: b.PassingScore,
	}
	for _, q := range b.Questions {
		in.Questions = append(in.Questions, quiz.Question{
			Prompt:      q.Prompt,
			Options:     q.Options,
			AnswerIndex: *q.AnswerIndex,
			Explanation: q.Explanation,
		})
	}
	return in
}

// SubmitBody lists the chosen option per question; -1 skips a question.
type SubmitBody struct {
	Answers []int `json:"answers" binding:"required,dive,min=-1"`
}

type AnswerResponse struct {
	Selected    int    `json:"selected"`
	Correct     bool   `json:"correct"`
	AnswerIndex int    `json:"answer_index"`
	Explanation string `json:"explanation,omitempty"`
}

type ResultResponse struct {
	QuizID  string           `json:"quiz_id"`
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Percent int              `json:"percent"`
	Passed  bool             `json:"passed"`
	Answers []AnswerResponse `json:"answers"`
}

func NewResultResponse(r *quiz.Result) ResultResponse {
	answers := make([]AnswerResponse, len(r.Answers))
	for i, a := range r.Answers {
		answers[i] = AnswerResponse{
			Selected:    a.Selected,
			Correct:     a.Correct,
			AnswerIndex: a.AnswerIndex,
			Explanation: a.Explanation,
		}
	}
	return ResultResponse{
		QuizID:  r.QuizID,
		Score:   r.Score,
		Total:   r.Total,
		Percent: r.Percent,
		Passed:  r.Passed,
		Answers: answers,
	}
}
