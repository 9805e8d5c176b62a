// Package protocol implements the trivia wire protocol framing.
//
// One frame on the wire is:
//
//	COMMAND(16 bytes, space-padded) '|' LENGTH(4 decimal digits, zero-padded) '|' PAYLOAD
//
// Multi-value payloads join their fields with '#' (e.g. "bob#secret").
package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// CmdFieldLength is the exact byte width of the command field.
	CmdFieldLength = 16

	// LengthFieldLength is the exact byte width of the payload length field.
	LengthFieldLength = 4

	// MaxPayloadLength is the largest payload representable by the length field.
	MaxPayloadLength = 9999

	// HeaderLength is the byte size of "command|length|" before the payload.
	HeaderLength = CmdFieldLength + 1 + LengthFieldLength + 1

	// Delimiter separates the three frame fields.
	Delimiter = "|"

	// DataDelimiter separates sub-fields inside a payload.
	DataDelimiter = "#"
)

// Client-to-server command tokens.
const (
	CmdLogin       = "LOGIN"
	CmdLogout      = "LOGOUT"
	CmdLogged      = "LOGGED"
	CmdGetQuestion = "GET_QUESTION"
	CmdSendAnswer  = "SEND_ANSWER"
	CmdMyScore     = "MY_SCORE"
	CmdHighScore   = "HIGHSCORE"
)

// Server-to-client command tokens.
const (
	CmdLoginOK       = "LOGIN_OK"
	CmdLoggedAnswer  = "LOGGED_ANSWER"
	CmdYourQuestion  = "YOUR_QUESTION"
	CmdCorrectAnswer = "CORRECT_ANSWER"
	CmdWrongAnswer   = "WRONG_ANSWER"
	CmdYourScore     = "YOUR_SCORE"
	CmdAllScore      = "ALL_SCORE"
	CmdError         = "ERROR"
	CmdNoQuestions   = "NO_QUESTIONS"
)

var knownCommands = map[string]bool{
	CmdLogin:         true,
	CmdLogout:        true,
	CmdLogged:        true,
	CmdGetQuestion:   true,
	CmdSendAnswer:    true,
	CmdMyScore:       true,
	CmdHighScore:     true,
	CmdLoginOK:       true,
	CmdLoggedAnswer:  true,
	CmdYourQuestion:  true,
	CmdCorrectAnswer: true,
	CmdWrongAnswer:   true,
	CmdYourScore:     true,
	CmdAllScore:      true,
	CmdError:         true,
	CmdNoQuestions:   true,
}

// KnownCommand reports whether cmd is a recognized client or server token.
func KnownCommand(cmd string) bool {
	return knownCommands[cmd]
}

// FrameError reports a malformed frame: unknown command, oversized payload,
// wrong field count, or a length/payload mismatch. A connection that produces
// one is torn down by the server.
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string {
	return "protocol: " + e.Reason
}

func frameErrorf(format string, args ...any) error {
	return &FrameError{Reason: fmt.Sprintf(format, args...)}
}

// Frame is one complete protocol message. Frames are value objects built per
// message and never persisted.
type Frame struct {
	Command string
	Payload string
}

// BuildMessage encodes a command and payload into wire bytes.
func BuildMessage(cmd, payload string) ([]byte, error) {
	if !KnownCommand(cmd) {
		return nil, frameErrorf("build: unknown command %q", cmd)
	}
	if len(payload) > MaxPayloadLength {
		return nil, frameErrorf("build: payload length %d exceeds %d", len(payload), MaxPayloadLength)
	}

	var b strings.Builder
	b.Grow(HeaderLength + len(payload))
	b.WriteString(cmd)
	b.WriteString(strings.Repeat(" ", CmdFieldLength-len(cmd)))
	b.WriteString(Delimiter)
	fmt.Fprintf(&b, "%0*d", LengthFieldLength, len(payload))
	b.WriteString(Delimiter)
	b.WriteString(payload)
	return []byte(b.String()), nil
}

// ParseMessage decodes raw wire bytes into a Frame.
//
// The raw bytes must contain exactly two delimiters, the length field must be
// a non-negative integer, and the payload's byte length must equal the parsed
// length exactly. The command is returned with its padding trimmed; the
// payload is returned byte-exact.
func ParseMessage(raw []byte) (Frame, error) {
	s := string(raw)
	if n := strings.Count(s, Delimiter); n != 2 {
		return Frame{}, frameErrorf("parse: expected 2 delimiters, got %d", n)
	}

	parts := strings.SplitN(s, Delimiter, 3)
	cmdField, lengthField, payload := parts[0], parts[1], parts[2]

	length, err := strconv.Atoi(strings.TrimSpace(lengthField))
	if err != nil || length < 0 {
		return Frame{}, frameErrorf("parse: bad length field %q", lengthField)
	}
	if len(payload) != length {
		return Frame{}, frameErrorf("parse: declared length %d, payload has %d bytes", length, len(payload))
	}

	return Frame{Command: strings.TrimSpace(cmdField), Payload: payload}, nil
}

// ReadFrame reads exactly one frame from r: the fixed-size header first, then
// the declared number of payload bytes. The assembled bytes go through
// ParseMessage, so a truncated read surfaces as an error and a partial frame
// never reaches the caller.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, HeaderLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, err
	}

	lengthField := string(header[CmdFieldLength+1 : HeaderLength-1])
	length, err := strconv.Atoi(strings.TrimSpace(lengthField))
	if err != nil || length < 0 || length > MaxPayloadLength {
		return Frame{}, frameErrorf("read: bad length field %q", lengthField)
	}

	raw := make([]byte, HeaderLength+length)
	copy(raw, header)
	if _, err := io.ReadFull(r, raw[HeaderLength:]); err != nil {
		return Frame{}, err
	}
	return ParseMessage(raw)
}

// SplitFields splits a payload on the data delimiter and validates the field
// count. A mismatched count is a FrameError.
func SplitFields(payload string, want int) ([]string, error) {
	fields := strings.Split(payload, DataDelimiter)
	if len(fields) != want {
		return nil, frameErrorf("split: expected %d fields, got %d", want, len(fields))
	}
	return fields, nil
}

// JoinFields joins payload sub-fields with the data delimiter.
func JoinFields(fields ...string) string {
	return strings.Join(fields, DataDelimiter)
}
