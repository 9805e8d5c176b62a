// Package quiz implements question selection and answer grading.
package quiz

import (
	"math/rand"
	"time"

	"github.com/NicolasHaas/gotrivia/pkg/model"
	"github.com/NicolasHaas/gotrivia/pkg/store"
)

// CorrectAnswerPoints is the score reward for one correct answer.
const CorrectAnswerPoints = 5

// Picker selects random unseen questions from a bank.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a picker seeded from the current time.
func NewPicker() *Picker {
	return NewSeededPicker(time.Now().UnixNano())
}

// NewSeededPicker creates a picker with a fixed seed, for deterministic tests.
func NewSeededPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Pick draws uniformly at random from the bank, excluding ids in asked.
//
// It works on a per-invocation copy of the bank's id list: a drawn id that was
// already asked is discarded from the copy and the draw retried, so the loop
// terminates in at most bank-size iterations. When the copy empties, the bank
// is exhausted for this user and ok is false. Exhaustion is a value, not an
// error.
func (p *Picker) Pick(bank *store.QuestionBank, asked map[int]bool) (model.Question, bool) {
	candidates := bank.IDs()
	for len(candidates) > 0 {
		i := p.rng.Intn(len(candidates))
		id := candidates[i]
		if !asked[id] {
			q, ok := bank.Get(id)
			return q, ok
		}
		candidates[i] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]
	}
	return model.Question{}, false
}

// Outcome classifies a graded answer.
type Outcome int

const (
	// OutcomeCorrect: the answer equals the recorded correct answer.
	OutcomeCorrect Outcome = iota
	// OutcomeWrong: the answer is a listed option but not the correct one.
	OutcomeWrong
	// OutcomeNotAnOption: the answer is not among the question's options.
	// Reported to the player as a wrong answer with an explanation, never as
	// a fatal error.
	OutcomeNotAnOption
)

// Grade checks a submitted answer against a question. Membership in the
// option set is checked first; only a member can be correct.
func Grade(q model.Question, answer string) Outcome {
	member := false
	for _, opt := range q.Answers {
		if opt == answer {
			member = true
			break
		}
	}
	if !member {
		return OutcomeNotAnOption
	}
	if answer == q.Correct {
		return OutcomeCorrect
	}
	return OutcomeWrong
}
