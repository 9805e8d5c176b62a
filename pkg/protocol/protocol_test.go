package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestBuildMessageLogin(t *testing.T) {
	got, err := BuildMessage(CmdLogin, "bob#secret")
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	want := "LOGIN           |0010|bob#secret"
	if string(got) != want {
		t.Fatalf("BuildMessage: got %q want %q", got, want)
	}
}

func TestBuildMessageRejectsUnknownCommand(t *testing.T) {
	if _, err := BuildMessage("BOGUS", ""); !isFrameError(err) {
		t.Fatalf("BuildMessage: expected FrameError, got %v", err)
	}
}

func TestBuildMessageRejectsOversizedPayload(t *testing.T) {
	payload := strings.Repeat("x", MaxPayloadLength+1)
	if _, err := BuildMessage(CmdAllScore, payload); !isFrameError(err) {
		t.Fatalf("BuildMessage: expected FrameError, got %v", err)
	}
}

func TestParseMessageLogin(t *testing.T) {
	f, err := ParseMessage([]byte("LOGIN           |0010|bob#secret"))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if f.Command != CmdLogin || f.Payload != "bob#secret" {
		t.Fatalf("ParseMessage: got (%q, %q)", f.Command, f.Payload)
	}
}

func TestParseMessageRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"length mismatch", "BADCMD|3|12"},
		{"no delimiters", "LOGIN"},
		{"one delimiter", "LOGIN|0000"},
		{"three delimiters", "LOGIN|0000||"},
		{"non-numeric length", "LOGIN           |00xx|"},
		{"negative length", "LOGIN           |-001|x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseMessage([]byte(tc.raw)); !isFrameError(err) {
				t.Fatalf("ParseMessage(%q): expected FrameError, got %v", tc.raw, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := []string{"", "bob#secret", "42", strings.Repeat("a", MaxPayloadLength)}
	commands := []string{CmdLogin, CmdSendAnswer, CmdYourQuestion, CmdError}

	for _, cmd := range commands {
		for _, payload := range payloads {
			raw, err := BuildMessage(cmd, payload)
			if err != nil {
				t.Fatalf("BuildMessage(%q, %d bytes): %v", cmd, len(payload), err)
			}
			f, err := ParseMessage(raw)
			if err != nil {
				t.Fatalf("ParseMessage(%q, %d bytes): %v", cmd, len(payload), err)
			}
			if f.Command != cmd || f.Payload != payload {
				t.Fatalf("round trip: got (%q, %q) want (%q, %d bytes)", f.Command, f.Payload, cmd, len(payload))
			}
		}
	}
}

func TestReadFrame(t *testing.T) {
	raw, err := BuildMessage(CmdGetQuestion, "")
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	second, err := BuildMessage(CmdSendAnswer, "2313#4")
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}

	r := bytes.NewReader(append(raw, second...))

	f, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.Command != CmdGetQuestion || f.Payload != "" {
		t.Fatalf("ReadFrame: got (%q, %q)", f.Command, f.Payload)
	}

	f, err = ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.Command != CmdSendAnswer || f.Payload != "2313#4" {
		t.Fatalf("ReadFrame: got (%q, %q)", f.Command, f.Payload)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	raw, err := BuildMessage(CmdSendAnswer, "2313#4")
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader(raw[:len(raw)-2])); err == nil {
		t.Fatal("ReadFrame: expected error for truncated payload")
	}
}

func TestSplitFields(t *testing.T) {
	fields, err := SplitFields("bob#secret", 2)
	if err != nil {
		t.Fatalf("SplitFields: %v", err)
	}
	if fields[0] != "bob" || fields[1] != "secret" {
		t.Fatalf("SplitFields: got %v", fields)
	}

	if _, err := SplitFields("bob#secret#extra", 2); !isFrameError(err) {
		t.Fatalf("SplitFields: expected FrameError, got %v", err)
	}
	if _, err := SplitFields("bob", 2); !isFrameError(err) {
		t.Fatalf("SplitFields: expected FrameError, got %v", err)
	}
}

func TestJoinFields(t *testing.T) {
	if got := JoinFields("2313", "How much is 2 + 2", "3", "4"); got != "2313#How much is 2 + 2#3#4" {
		t.Fatalf("JoinFields: got %q", got)
	}
}

func isFrameError(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe)
}
