package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

// withTerminal makes GetPassword take the terminal path with a stubbed read.
func withTerminal(t *testing.T, read func(int) ([]byte, error)) {
	t.Helper()
	oldRead, oldIsTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldIsTerm })
	readPassword = read
	isTerminal = func(int) bool { return true }
}

// withoutTerminal forces the piped-stdin path.
func withoutTerminal(t *testing.T) {
	t.Helper()
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })
	isTerminal = func(int) bool { return false }
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetPassword_Terminal(t *testing.T) {
	withTerminal(t, func(int) ([]byte, error) { return []byte("Strong1!"), nil })

	var out bytes.Buffer
	pw, err := GetPassword(rdr(""), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "Strong1!", string(pw))
	assert.Equal(t, "Password: \n", out.String())
}

func TestGetPassword_TerminalError(t *testing.T) {
	withTerminal(t, func(int) ([]byte, error) { return nil, errors.New("boom") })

	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Password", &out)
	assert.Error(t, err)
}

func TestGetPassword_Piped(t *testing.T) {
	withoutTerminal(t)

	var out bytes.Buffer
	in := rdr(" Strong1! \r\nsecond\n")

	pw, err := GetPassword(in, "Password", &out)
	require.NoError(t, err)
	// surrounding spaces belong to the password
	assert.Equal(t, " Strong1! ", string(pw))

	pw, err = GetPassword(in, "Confirm", &out)
	require.NoError(t, err)
	assert.Equal(t, "second", string(pw))

	_, err = GetPassword(in, "Again", &out)
	assert.ErrorIs(t, err, io.EOF)
}
