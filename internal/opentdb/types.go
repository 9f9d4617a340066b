package opentdb

import (
	"fmt"
	"html"
)

// ResponseCode is the numeric status carried in every Open Trivia DB payload.
type ResponseCode int

const (
	CodeSuccess          ResponseCode = 0
	CodeNoResults        ResponseCode = 1
	CodeInvalidParameter ResponseCode = 2
	CodeTokenNotFound    ResponseCode = 3
	CodeTokenEmpty       ResponseCode = 4
	CodeRateLimit        ResponseCode = 5
)

func (c ResponseCode) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeNoResults:
		return "no results: the API doesn't have enough questions for the query"
	case CodeInvalidParameter:
		return "invalid parameter"
	case CodeTokenNotFound:
		return "token not found"
	case CodeTokenEmpty:
		return "token empty: all questions for the query were returned, token must be reset"
	case CodeRateLimit:
		return "rate limit: each IP can access the API once every 5 seconds"
	default:
		return fmt.Sprintf("undocumented API error %d", int(c))
	}
}

// resetsToken reports whether the cached session token must be discarded.
func (c ResponseCode) resetsToken() bool {
	return c == CodeTokenNotFound || c == CodeTokenEmpty
}

// Question is one decoded multiple-choice question.
type Question struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty" validate:"required"`
	Category         string   `json:"category" validate:"required"`
	Question         string   `json:"question" validate:"required"`
	CorrectAnswer    string   `json:"correct_answer" validate:"required"`
	IncorrectAnswers []string `json:"incorrect_answers" validate:"len=3,dive,required"`
}

// decode replaces HTML entities in every text field.
func (q *Question) decode() {
	q.Category = html.UnescapeString(q.Category)
	q.Question = html.UnescapeString(q.Question)
	q.CorrectAnswer = html.UnescapeString(q.CorrectAnswer)
	for i, a := range q.IncorrectAnswers {
		q.IncorrectAnswers[i] = html.UnescapeString(a)
	}
}

type questionsResponse struct {
	ResponseCode ResponseCode `json:"response_code"`
	Results      []Question   `json:"results"`
}

type tokenResponse struct {
	ResponseCode    ResponseCode `json:"response_code"`
	ResponseMessage string       `json:"response_message"`
	Token           string       `json:"token"`
}
