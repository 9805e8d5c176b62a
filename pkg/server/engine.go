package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/NicolasHaas/gotrivia/pkg/model"
	"github.com/NicolasHaas/gotrivia/pkg/protocol"
	"github.com/NicolasHaas/gotrivia/pkg/quiz"
	"github.com/NicolasHaas/gotrivia/pkg/store"
)

// frameEvent carries one decoded frame from a connection's read pump to the
// engine.
type frameEvent struct {
	c     *conn
	frame protocol.Frame
}

// Engine is the command dispatcher. It is the single owner of the session
// table, user store, and question bank: every mutation happens on the Run
// goroutine, fed by the per-connection pumps over channels. No handler blocks
// on any single client; responses only queue in the target's outbox.
type Engine struct {
	cfg      Config
	users    *store.UserStore
	bank     *store.QuestionBank
	sessions *SessionTable
	picker   *quiz.Picker
	metrics  *Metrics

	conns map[uint64]*conn

	register   chan *conn
	unregister chan *conn
	frames     chan frameEvent

	wg   sync.WaitGroup
	done chan struct{}
}

func newEngine(cfg Config, users *store.UserStore, bank *store.QuestionBank, metrics *Metrics) *Engine {
	return &Engine{
		cfg:        cfg,
		users:      users,
		bank:       bank,
		sessions:   NewSessionTable(),
		picker:     quiz.NewPicker(),
		metrics:    metrics,
		conns:      make(map[uint64]*conn),
		register:   make(chan *conn),
		unregister: make(chan *conn),
		frames:     make(chan frameEvent),
		done:       make(chan struct{}),
	}
}

// Run is the engine loop. It exits after Stop, once every connection has been
// torn down.
func (e *Engine) Run() {
	for {
		select {
		case c := <-e.register:
			e.conns[c.id] = c
			e.sessions.Register(c.id)
			e.metrics.TotalConnections.Add(1)
			e.metrics.ActiveConnections.Add(1)
			slog.Debug("client connected", "conn", c.id, "remote", c.sock.RemoteAddr())

			e.wg.Add(2)
			go func() {
				defer e.wg.Done()
				c.readPump(e)
			}()
			go func() {
				defer e.wg.Done()
				c.writePump(e)
			}()

		case c := <-e.unregister:
			e.teardown(c)

		case ev := <-e.frames:
			e.handleFrame(ev.c, ev.frame)

		case <-e.done:
			for _, c := range e.conns {
				e.teardown(c)
			}
			return
		}
	}
}

// Stop shuts the engine down and waits for all connection pumps to exit.
func (e *Engine) Stop() {
	close(e.done)
	e.wg.Wait()
}

// teardown removes a connection's session and discards its queued output.
// Idempotent: logout and a read error may both report the same connection.
func (e *Engine) teardown(c *conn) {
	if _, ok := e.conns[c.id]; !ok {
		return
	}
	delete(e.conns, c.id)
	e.sessions.Remove(c.id)
	c.close()
	e.metrics.ActiveConnections.Add(-1)
	e.metrics.TotalDisconnects.Add(1)
	slog.Debug("client disconnected", "conn", c.id)
}

// handleFrame runs the session state machine for one decoded frame.
func (e *Engine) handleFrame(c *conn, f protocol.Frame) {
	sess, ok := e.sessions.Get(c.id)
	if !ok {
		return // connection already torn down
	}

	if !sess.Authenticated {
		if f.Command == protocol.CmdLogin {
			e.handleLogin(c, f.Payload)
			return
		}
		// Protocol violation: reported, not fatal.
		c.send(protocol.CmdError, fmt.Sprintf("command %s requires login", f.Command))
		return
	}

	switch f.Command {
	case protocol.CmdLogout:
		slog.Info("user logged out", "conn", c.id, "user", sess.Username)
		e.teardown(c)
	case protocol.CmdLogged:
		e.handleLogged(c)
	case protocol.CmdMyScore:
		e.handleMyScore(c, sess)
	case protocol.CmdHighScore:
		e.handleHighScore(c)
	case protocol.CmdGetQuestion:
		e.handleGetQuestion(c, sess)
	case protocol.CmdSendAnswer:
		e.handleSendAnswer(c, sess, f.Payload)
	case protocol.CmdLogin:
		c.send(protocol.CmdError, "already logged in")
	default:
		c.send(protocol.CmdError, fmt.Sprintf("command %s not recognized", f.Command))
	}
}

// handleLogin checks credentials against the user store. Passwords are plain
// string comparisons; there is no credential security in this protocol.
func (e *Engine) handleLogin(c *conn, payload string) {
	fields, err := protocol.SplitFields(payload, 2)
	if err != nil {
		// Framing violation inside the payload tears the connection down.
		slog.Warn("malformed login payload", "conn", c.id, "err", err)
		e.teardown(c)
		return
	}
	username, password := fields[0], fields[1]

	user, ok := e.users.Get(username)
	if !ok {
		e.metrics.FailedLogins.Add(1)
		c.send(protocol.CmdError, fmt.Sprintf("user %s does not exist", username))
		return
	}
	if user.Password != password {
		e.metrics.FailedLogins.Add(1)
		c.send(protocol.CmdError, "password incorrect")
		return
	}

	e.sessions.MarkAuthenticated(c.id, username)
	e.metrics.SuccessfulLogins.Add(1)
	slog.Info("user logged in", "conn", c.id, "user", username)
	c.send(protocol.CmdLoginOK, "")
}

// handleLogged lists every registered username, not only the connected ones.
// The listing deliberately covers the whole user store.
func (e *Engine) handleLogged(c *conn) {
	c.send(protocol.CmdLoggedAnswer, strings.Join(e.users.Usernames(), ", "))
}

func (e *Engine) handleMyScore(c *conn, sess model.Session) {
	user, ok := e.users.Get(sess.Username)
	if !ok {
		c.send(protocol.CmdError, "internal error: session user missing")
		return
	}
	c.send(protocol.CmdYourScore, strconv.Itoa(user.Score))
}

func (e *Engine) handleHighScore(c *conn) {
	var b strings.Builder
	for _, u := range e.users.ByScoreDesc() {
		fmt.Fprintf(&b, "%s : %d\n", u.Username, u.Score)
	}
	c.send(protocol.CmdAllScore, b.String())
}

// handleGetQuestion selects a random unseen question for the session's user
// and marks it asked, so repeated requests walk the whole bank exactly once.
func (e *Engine) handleGetQuestion(c *conn, sess model.Session) {
	user, ok := e.users.Get(sess.Username)
	if !ok {
		c.send(protocol.CmdError, "internal error: session user missing")
		return
	}

	q, ok := e.picker.Pick(e.bank, user.Asked)
	if !ok {
		c.send(protocol.CmdNoQuestions, "game over: you have answered every question in the bank")
		return
	}
	e.users.MarkAsked(sess.Username, q.ID)
	e.metrics.QuestionsServed.Add(1)

	fields := append([]string{strconv.Itoa(q.ID), q.Text}, q.Answers...)
	c.send(protocol.CmdYourQuestion, protocol.JoinFields(fields...))
}

// handleSendAnswer grades an answer. An answer outside the option set and a
// listed-but-wrong answer are both wrong-answer outcomes; only the score
// reward distinguishes a correct one. Unknown or malformed question ids are
// domain errors, never fatal.
func (e *Engine) handleSendAnswer(c *conn, sess model.Session, payload string) {
	fields, err := protocol.SplitFields(payload, 2)
	if err != nil {
		slog.Warn("malformed answer payload", "conn", c.id, "err", err)
		e.teardown(c)
		return
	}

	questionID, err := strconv.Atoi(fields[0])
	if err != nil {
		c.send(protocol.CmdError, fmt.Sprintf("bad question id %q", fields[0]))
		return
	}
	q, ok := e.bank.Get(questionID)
	if !ok {
		c.send(protocol.CmdError, fmt.Sprintf("unknown question id %d", questionID))
		return
	}

	answer := fields[1]
	switch quiz.Grade(q, answer) {
	case quiz.OutcomeCorrect:
		e.users.AddScore(sess.Username, e.cfg.RewardPoints)
		e.metrics.AnswersCorrect.Add(1)
		c.send(protocol.CmdCorrectAnswer, fmt.Sprintf("correct answer, %d points", e.cfg.RewardPoints))
	case quiz.OutcomeWrong:
		e.metrics.AnswersWrong.Add(1)
		c.send(protocol.CmdWrongAnswer, "wrong answer, the correct answer is: "+q.Correct)
	case quiz.OutcomeNotAnOption:
		e.metrics.AnswersWrong.Add(1)
		c.send(protocol.CmdWrongAnswer, "your answer is not one of the question's options")
	}

	if e.cfg.MarkAskedOnAnswer {
		e.users.MarkAsked(sess.Username, q.ID)
	}
}
