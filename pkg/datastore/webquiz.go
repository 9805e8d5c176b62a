package datastore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/NicolasHaas/gotrivia/pkg/model"
)

// DefaultTriviaURL fetches 50 easy multiple-choice questions with
// base64-encoded fields, so raw HTML entities never reach the wire protocol.
const DefaultTriviaURL = "https://opentdb.com/api.php?amount=50&difficulty=easy&type=multiple&encode=base64"

// WebQuizLoader fetches questions from the Open Trivia DB HTTP API.
type WebQuizLoader struct {
	URL    string
	Client *http.Client
}

// NewWebQuizLoader creates a loader for the default Open Trivia DB query.
func NewWebQuizLoader() *WebQuizLoader {
	return &WebQuizLoader{
		URL:    DefaultTriviaURL,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type webQuizResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []webQuizQuestion `json:"results"`
}

type webQuizQuestion struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// LoadQuestions fetches and decodes the question set. Ids are assigned
// sequentially from 1 in response order; the correct answer is listed as the
// first option, matching the upstream feed order.
func (w *WebQuizLoader) LoadQuestions() ([]model.Question, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("datastore: build trivia request: %w", err)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datastore: fetch trivia questions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datastore: trivia api status %s", resp.Status)
	}

	var body webQuizResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("datastore: decode trivia response: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("datastore: trivia api response code %d", body.ResponseCode)
	}

	questions := make([]model.Question, 0, len(body.Results))
	for i, r := range body.Results {
		text, err := decodeB64(r.Question)
		if err != nil {
			return nil, fmt.Errorf("datastore: question %d: %w", i+1, err)
		}
		correct, err := decodeB64(r.CorrectAnswer)
		if err != nil {
			return nil, fmt.Errorf("datastore: question %d: %w", i+1, err)
		}
		answers := []string{correct}
		for _, enc := range r.IncorrectAnswers {
			wrong, err := decodeB64(enc)
			if err != nil {
				return nil, fmt.Errorf("datastore: question %d: %w", i+1, err)
			}
			answers = append(answers, wrong)
		}
		questions = append(questions, model.Question{
			ID:      i + 1,
			Text:    text,
			Answers: answers,
			Correct: correct,
		})
	}
	return questions, nil
}

func decodeB64(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("bad base64 field: %w", err)
	}
	return string(raw), nil
}
