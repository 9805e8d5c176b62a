// Package store holds the in-memory game state: the user repository and the
// question bank. Both are populated once by a loader before the server engine
// starts; afterwards only the engine goroutine mutates them.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/NicolasHaas/gotrivia/pkg/model"
)

// UserStore is the in-memory user repository. Insertion order is preserved so
// high-score ties list in stable input order.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User
	order []string
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

// Add registers a user. The username must validate and be unique.
func (s *UserStore) Add(u *model.User) error {
	if err := model.ValidateUsername(u.Username); err != nil {
		return fmt.Errorf("store: add user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Username]; exists {
		return fmt.Errorf("store: add user: duplicate username %q", u.Username)
	}
	if u.Asked == nil {
		u.Asked = make(map[int]bool)
	}
	s.users[u.Username] = u
	s.order = append(s.order, u.Username)
	return nil
}

// Get returns a snapshot of the named user. The asked set is copied, so the
// caller cannot mutate store state through it.
func (s *UserStore) Get(username string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, false
	}
	return snapshotUser(u), true
}

// AddScore adds points to a user's score. Unknown usernames are ignored.
func (s *UserStore) AddScore(username string, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		u.Score += points
	}
}

// MarkAsked records that a question id has been served to the user.
func (s *UserStore) MarkAsked(username string, questionID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		u.Asked[questionID] = true
	}
}

// Count returns the number of registered users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Usernames returns all registered usernames in insertion order.
func (s *UserStore) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// ByScoreDesc returns user snapshots ranked by score descending. The sort is
// stable: equal scores keep their insertion order.
func (s *UserStore) ByScoreDesc() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranked := make([]model.User, 0, len(s.order))
	for _, name := range s.order {
		ranked = append(ranked, snapshotUser(s.users[name]))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// All returns user snapshots in insertion order.
func (s *UserStore) All() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.order))
	for _, name := range s.order {
		users = append(users, snapshotUser(s.users[name]))
	}
	return users
}

func snapshotUser(u *model.User) model.User {
	snap := *u
	snap.Asked = make(map[int]bool, len(u.Asked))
	for id, v := range u.Asked {
		snap.Asked[id] = v
	}
	return snap
}

// QuestionBank is the read-only in-memory question repository.
type QuestionBank struct {
	mu        sync.RWMutex
	questions map[int]model.Question
	order     []int
}

// NewQuestionBank creates an empty question bank.
func NewQuestionBank() *QuestionBank {
	return &QuestionBank{questions: make(map[int]model.Question)}
}

// Add inserts a question. The question must validate and its id be unique.
func (b *QuestionBank) Add(q model.Question) error {
	if err := q.Validate(); err != nil {
		return fmt.Errorf("store: add question %d: %w", q.ID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.questions[q.ID]; exists {
		return fmt.Errorf("store: add question: duplicate id %d", q.ID)
	}
	b.questions[q.ID] = q
	b.order = append(b.order, q.ID)
	return nil
}

// Get returns the question with the given id.
func (b *QuestionBank) Get(id int) (model.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.questions[id]
	return q, ok
}

// Count returns the number of questions in the bank.
func (b *QuestionBank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// IDs returns all question ids in insertion order.
func (b *QuestionBank) IDs() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]int, len(b.order))
	copy(ids, b.order)
	return ids
}

// All returns all questions in insertion order.
func (b *QuestionBank) All() []model.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	qs := make([]model.Question, 0, len(b.order))
	for _, id := range b.order {
		qs = append(qs, b.questions[id])
	}
	return qs
}
