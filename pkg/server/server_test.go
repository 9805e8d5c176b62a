package server

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/NicolasHaas/gotrivia/pkg/model"
	"github.com/NicolasHaas/gotrivia/pkg/protocol"
	"github.com/NicolasHaas/gotrivia/pkg/store"
)

// newTestServer starts a server on an ephemeral port with a small fixture
// data set and registers cleanup.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	users := store.NewUserStore()
	if err := users.Add(model.NewUser("test", "test", 0)); err != nil {
		t.Fatalf("Add user: %v", err)
	}
	bank := store.NewQuestionBank()
	q := model.Question{ID: 2313, Text: "How much is 2 + 2", Answers: []string{"3", "4", "2", "1"}, Correct: "4"}
	if err := bank.Add(q); err != nil {
		t.Fatalf("Add question: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "" // no metrics endpoint in tests

	s := New(cfg, Dependencies{Users: users, Bank: bank})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func dialTestServer(t *testing.T, s *Server) net.Conn {
	t.Helper()
	sock, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = sock.Close() })
	_ = sock.SetDeadline(time.Now().Add(5 * time.Second))
	return sock
}

func roundTrip(t *testing.T, sock net.Conn, cmd, payload string) protocol.Frame {
	t.Helper()
	raw, err := protocol.BuildMessage(cmd, payload)
	if err != nil {
		t.Fatalf("BuildMessage(%s): %v", cmd, err)
	}
	if _, err := sock.Write(raw); err != nil {
		t.Fatalf("Write(%s): %v", cmd, err)
	}
	f, err := protocol.ReadFrame(sock)
	if err != nil {
		t.Fatalf("ReadFrame after %s: %v", cmd, err)
	}
	return f
}

func TestServerEndToEnd(t *testing.T) {
	s := newTestServer(t)
	sock := dialTestServer(t, s)

	if f := roundTrip(t, sock, protocol.CmdLogin, "test#test"); f.Command != protocol.CmdLoginOK {
		t.Fatalf("LOGIN: got %s %q", f.Command, f.Payload)
	}

	if f := roundTrip(t, sock, protocol.CmdMyScore, ""); f.Command != protocol.CmdYourScore || f.Payload != "0" {
		t.Fatalf("MY_SCORE: got %s %q", f.Command, f.Payload)
	}

	f := roundTrip(t, sock, protocol.CmdGetQuestion, "")
	if f.Command != protocol.CmdYourQuestion || !strings.HasPrefix(f.Payload, "2313#") {
		t.Fatalf("GET_QUESTION: got %s %q", f.Command, f.Payload)
	}

	if f := roundTrip(t, sock, protocol.CmdSendAnswer, "2313#4"); f.Command != protocol.CmdCorrectAnswer {
		t.Fatalf("SEND_ANSWER: got %s %q", f.Command, f.Payload)
	}

	if f := roundTrip(t, sock, protocol.CmdMyScore, ""); f.Payload != "5" {
		t.Fatalf("MY_SCORE after correct answer: got %q", f.Payload)
	}

	f = roundTrip(t, sock, protocol.CmdHighScore, "")
	if f.Command != protocol.CmdAllScore || !strings.Contains(f.Payload, "test : 5") {
		t.Fatalf("HIGHSCORE: got %s %q", f.Command, f.Payload)
	}
}

func TestServerLogoutClosesSocket(t *testing.T) {
	s := newTestServer(t)
	sock := dialTestServer(t, s)

	if f := roundTrip(t, sock, protocol.CmdLogin, "test#test"); f.Command != protocol.CmdLoginOK {
		t.Fatalf("LOGIN: got %s", f.Command)
	}

	raw, _ := protocol.BuildMessage(protocol.CmdLogout, "")
	if _, err := sock.Write(raw); err != nil {
		t.Fatalf("Write LOGOUT: %v", err)
	}

	// No response frame; the server tears the connection down.
	if _, err := protocol.ReadFrame(sock); err == nil {
		t.Fatal("expected the socket to close after LOGOUT")
	}
}

func TestServerMalformedFrameDisconnects(t *testing.T) {
	s := newTestServer(t)
	sock := dialTestServer(t, s)

	// Valid header length, garbage structure.
	junk := []byte("XXXXXXXXXXXXXXXXXXXXXX")
	if _, err := sock.Write(junk); err != nil {
		t.Fatalf("Write junk: %v", err)
	}

	if _, err := protocol.ReadFrame(sock); err == nil {
		t.Fatal("expected the socket to close after a malformed frame")
	}
}

func TestServerIndependentSessions(t *testing.T) {
	s := newTestServer(t)
	sockA := dialTestServer(t, s)
	sockB := dialTestServer(t, s)

	if f := roundTrip(t, sockA, protocol.CmdLogin, "test#test"); f.Command != protocol.CmdLoginOK {
		t.Fatalf("client A LOGIN: got %s", f.Command)
	}

	// Client B has not logged in; its connection state is its own.
	if f := roundTrip(t, sockB, protocol.CmdMyScore, ""); f.Command != protocol.CmdError {
		t.Fatalf("client B MY_SCORE before login: got %s %q", f.Command, f.Payload)
	}

	if f := roundTrip(t, sockA, protocol.CmdMyScore, ""); f.Command != protocol.CmdYourScore {
		t.Fatalf("client A MY_SCORE: got %s", f.Command)
	}
}
