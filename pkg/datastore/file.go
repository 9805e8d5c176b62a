package datastore

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/NicolasHaas/gotrivia/pkg/model"
)

// FileStore loads users and questions from pipe-table text files.
//
// Users file, one row per user:
//
//	| User Name | Password | Score | Questions Asked |
//	| test      | test     | 0     | -               |
//	| yossi     | 123      | 50    | 2313,4122       |
//
// Questions file, one row per question, the correct answer given as a 1-based
// index into the comma-separated option list:
//
//	| Question ID | Question                        | Answers                            | Correct |
//	| 4122        | What is the capital of France ? | Lion,Marseille,Paris,Montpelier    | 3       |
//
// Rows with the wrong number of cells and the header row are skipped.
type FileStore struct {
	UsersPath     string
	QuestionsPath string
}

const fileCellsPerRow = 4

// LoadUsers reads the users file.
func (f *FileStore) LoadUsers() ([]*model.User, error) {
	var users []*model.User
	err := eachRow(f.UsersPath, "User Name", func(cells []string) error {
		score, err := strconv.Atoi(cells[2])
		if err != nil {
			return fmt.Errorf("bad score %q for user %q", cells[2], cells[0])
		}
		u := model.NewUser(cells[0], cells[1], score)
		if cells[3] != "-" {
			for _, field := range strings.Split(cells[3], ",") {
				id, err := strconv.Atoi(strings.TrimSpace(field))
				if err != nil {
					return fmt.Errorf("bad asked id %q for user %q", field, cells[0])
				}
				u.Asked[id] = true
			}
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("datastore: users file %s: %w", f.UsersPath, err)
	}
	return users, nil
}

// LoadQuestions reads the questions file.
func (f *FileStore) LoadQuestions() ([]model.Question, error) {
	var questions []model.Question
	err := eachRow(f.QuestionsPath, "Question ID", func(cells []string) error {
		id, err := strconv.Atoi(cells[0])
		if err != nil {
			return fmt.Errorf("bad question id %q", cells[0])
		}
		answers := strings.Split(cells[2], ",")
		for i := range answers {
			answers[i] = strings.TrimSpace(answers[i])
		}
		correct, err := strconv.Atoi(cells[3])
		if err != nil || correct < 1 || correct > len(answers) {
			return fmt.Errorf("question %d: correct index %q out of range", id, cells[3])
		}
		questions = append(questions, model.Question{
			ID:      id,
			Text:    cells[1],
			Answers: answers,
			Correct: answers[correct-1],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("datastore: questions file %s: %w", f.QuestionsPath, err)
	}
	return questions, nil
}

// eachRow scans a pipe-table file and calls fn with the trimmed cells of every
// data row. headerCell identifies the header row to skip.
func eachRow(path, headerCell string, fn func(cells []string) error) error {
	file, err := os.Open(path) //nolint:gosec // path from server config
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Count(line, "|") != fileCellsPerRow+1 {
			continue
		}
		raw := strings.Split(line, "|")
		cells := make([]string, 0, fileCellsPerRow)
		for _, cell := range raw[1 : len(raw)-1] {
			cells = append(cells, strings.TrimSpace(cell))
		}
		if cells[0] == headerCell {
			continue
		}
		if err := fn(cells); err != nil {
			return err
		}
	}
	return scanner.Err()
}
