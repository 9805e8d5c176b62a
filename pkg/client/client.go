// Package client implements the trivia client networking: a synchronous
// request/response wrapper over the framed TCP protocol.
package client

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NicolasHaas/gotrivia/pkg/model"
	"github.com/NicolasHaas/gotrivia/pkg/protocol"
)

// ServerError is an ERROR frame returned by the server. The connection stays
// usable after one.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}

// Client manages one connection to the trivia server. The protocol is
// strictly request/response, so every call writes a frame and blocks for the
// reply. Safe for concurrent use; calls serialize on an internal mutex.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the server.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("client: connect: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection without logging out.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call sends one command frame and reads the server's reply.
func (c *Client) call(cmd, payload string) (protocol.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := protocol.BuildMessage(cmd, payload)
	if err != nil {
		return protocol.Frame{}, fmt.Errorf("client: encode %s: %w", cmd, err)
	}
	if _, err := c.conn.Write(raw); err != nil {
		return protocol.Frame{}, fmt.Errorf("client: send %s: %w", cmd, err)
	}

	f, err := protocol.ReadFrame(c.conn)
	if err != nil {
		return protocol.Frame{}, fmt.Errorf("client: read reply to %s: %w", cmd, err)
	}
	return f, nil
}

// Login authenticates the session. A rejected login comes back as
// *ServerError; the connection stays open for another attempt.
func (c *Client) Login(username, password string) error {
	f, err := c.call(protocol.CmdLogin, protocol.JoinFields(username, password))
	if err != nil {
		return err
	}
	switch f.Command {
	case protocol.CmdLoginOK:
		return nil
	case protocol.CmdError:
		return &ServerError{Message: f.Payload}
	default:
		return fmt.Errorf("client: unexpected reply to login: %s", f.Command)
	}
}

// Logout ends the session. The server closes the socket without replying.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := protocol.BuildMessage(protocol.CmdLogout, "")
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(raw); err != nil {
		return fmt.Errorf("client: send logout: %w", err)
	}
	return c.conn.Close()
}

// LoggedUsers returns the server's comma-separated list of registered users.
func (c *Client) LoggedUsers() (string, error) {
	f, err := c.call(protocol.CmdLogged, "")
	if err != nil {
		return "", err
	}
	if f.Command == protocol.CmdError {
		return "", &ServerError{Message: f.Payload}
	}
	return f.Payload, nil
}

// MyScore returns the logged-in user's score.
func (c *Client) MyScore() (int, error) {
	f, err := c.call(protocol.CmdMyScore, "")
	if err != nil {
		return 0, err
	}
	if f.Command == protocol.CmdError {
		return 0, &ServerError{Message: f.Payload}
	}
	score, err := strconv.Atoi(f.Payload)
	if err != nil {
		return 0, fmt.Errorf("client: bad score payload %q: %w", f.Payload, err)
	}
	return score, nil
}

// HighScore returns the score table, one "name : score" line per user,
// highest first.
func (c *Client) HighScore() (string, error) {
	f, err := c.call(protocol.CmdHighScore, "")
	if err != nil {
		return "", err
	}
	if f.Command == protocol.CmdError {
		return "", &ServerError{Message: f.Payload}
	}
	return f.Payload, nil
}

// GetQuestion fetches the next unseen question. ok is false when the user has
// exhausted the bank.
func (c *Client) GetQuestion() (q model.Question, ok bool, err error) {
	f, err := c.call(protocol.CmdGetQuestion, "")
	if err != nil {
		return model.Question{}, false, err
	}
	switch f.Command {
	case protocol.CmdNoQuestions:
		return model.Question{}, false, nil
	case protocol.CmdError:
		return model.Question{}, false, &ServerError{Message: f.Payload}
	case protocol.CmdYourQuestion:
	default:
		return model.Question{}, false, fmt.Errorf("client: unexpected reply to get question: %s", f.Command)
	}

	// Variable arity: id, text, then one field per answer option.
	fields := strings.Split(f.Payload, protocol.DataDelimiter)
	if len(fields) < 4 {
		return model.Question{}, false, fmt.Errorf("client: malformed question payload %q", f.Payload)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Question{}, false, fmt.Errorf("client: bad question id %q: %w", fields[0], err)
	}
	return model.Question{ID: id, Text: fields[1], Answers: fields[2:]}, true, nil
}

// AnswerResult is the graded outcome of a submitted answer.
type AnswerResult struct {
	Correct bool
	Message string // the server's explanation line
}

// SendAnswer submits an answer for a question id and returns the grading.
func (c *Client) SendAnswer(questionID int, answer string) (AnswerResult, error) {
	f, err := c.call(protocol.CmdSendAnswer, protocol.JoinFields(strconv.Itoa(questionID), answer))
	if err != nil {
		return AnswerResult{}, err
	}
	switch f.Command {
	case protocol.CmdCorrectAnswer:
		return AnswerResult{Correct: true, Message: f.Payload}, nil
	case protocol.CmdWrongAnswer:
		return AnswerResult{Correct: false, Message: f.Payload}, nil
	case protocol.CmdError:
		return AnswerResult{}, &ServerError{Message: f.Payload}
	default:
		return AnswerResult{}, fmt.Errorf("client: unexpected reply to answer: %s", f.Command)
	}
}
