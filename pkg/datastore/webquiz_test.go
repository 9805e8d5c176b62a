package datastore

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestWebQuizLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"response_code":0,"results":[
			{"question":%q,"correct_answer":%q,"incorrect_answers":[%q,%q,%q]}
		]}`,
			b64("What is the capital of France ?"), b64("Paris"),
			b64("Lion"), b64("Marseille"), b64("Montpelier"))
	}))
	defer srv.Close()

	loader := NewWebQuizLoader()
	loader.URL = srv.URL

	questions, err := loader.LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("LoadQuestions: got %d questions want 1", len(questions))
	}

	q := questions[0]
	if q.ID != 1 || q.Text != "What is the capital of France ?" || q.Correct != "Paris" {
		t.Fatalf("LoadQuestions: unexpected question %+v", q)
	}
	if len(q.Answers) != 4 || q.Answers[0] != "Paris" {
		t.Fatalf("LoadQuestions: unexpected answers %v", q.Answers)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("LoadQuestions: loaded question invalid: %v", err)
	}
}

func TestWebQuizLoaderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response_code":2,"results":[]}`)
	}))
	defer srv.Close()

	loader := NewWebQuizLoader()
	loader.URL = srv.URL
	if _, err := loader.LoadQuestions(); err == nil {
		t.Fatal("LoadQuestions: expected error for non-zero response code")
	}
}

func TestWebQuizLoaderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := NewWebQuizLoader()
	loader.URL = srv.URL
	if _, err := loader.LoadQuestions(); err == nil {
		t.Fatal("LoadQuestions: expected error for 500 status")
	}
}
