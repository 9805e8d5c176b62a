package quiz

import (
	"testing"

	"github.com/NicolasHaas/gotrivia/pkg/model"
	"github.com/NicolasHaas/gotrivia/pkg/store"
)

func testBank(t *testing.T, ids ...int) *store.QuestionBank {
	t.Helper()
	b := store.NewQuestionBank()
	for _, id := range ids {
		q := model.Question{ID: id, Text: "q", Answers: []string{"a", "b"}, Correct: "a"}
		if err := b.Add(q); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return b
}

func TestPickReturnsOnlyUnseen(t *testing.T) {
	bank := testBank(t, 1, 2, 3)
	p := NewSeededPicker(1)

	q, ok := p.Pick(bank, map[int]bool{1: true, 2: true})
	if !ok {
		t.Fatal("Pick: expected a question, got exhaustion")
	}
	if q.ID != 3 {
		t.Fatalf("Pick: got id %d want 3", q.ID)
	}
}

func TestPickExhaustion(t *testing.T) {
	bank := testBank(t, 1, 2)
	p := NewSeededPicker(1)

	if _, ok := p.Pick(bank, map[int]bool{1: true, 2: true}); ok {
		t.Fatal("Pick: expected exhaustion for fully-asked bank")
	}
	if _, ok := p.Pick(store.NewQuestionBank(), map[int]bool{}); ok {
		t.Fatal("Pick: expected exhaustion for empty bank")
	}
}

func TestPickDistinctUntilExhaustion(t *testing.T) {
	const n = 10
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	bank := testBank(t, ids...)
	p := NewSeededPicker(42)

	asked := make(map[int]bool)
	for i := 0; i < n; i++ {
		q, ok := p.Pick(bank, asked)
		if !ok {
			t.Fatalf("Pick: exhaustion after %d picks, want %d", i, n)
		}
		if asked[q.ID] {
			t.Fatalf("Pick: repeated id %d", q.ID)
		}
		asked[q.ID] = true
	}
	if _, ok := p.Pick(bank, asked); ok {
		t.Fatal("Pick: expected exhaustion after all questions served")
	}
}

func TestGrade(t *testing.T) {
	q := model.Question{
		ID:      4122,
		Text:    "What is the capital of France ?",
		Answers: []string{"Lion", "Marseille", "Paris", "Montpelier"},
		Correct: "Paris",
	}

	if got := Grade(q, "Paris"); got != OutcomeCorrect {
		t.Fatalf("Grade(Paris): got %v want OutcomeCorrect", got)
	}
	if got := Grade(q, "Lion"); got != OutcomeWrong {
		t.Fatalf("Grade(Lion): got %v want OutcomeWrong", got)
	}
	if got := Grade(q, "Madrid"); got != OutcomeNotAnOption {
		t.Fatalf("Grade(Madrid): got %v want OutcomeNotAnOption", got)
	}
}
