package input

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".nbclient_history"
	historySize     = 200
	prompt          = "> "
)

// LineSource yields operator input one line at a time.  ReadLine blocks
// and returns io.EOF once the input is exhausted.
type LineSource interface {
	ReadLine() (string, error)
	Close() error
}

// NewLineSource reads from f.  A terminal gets line editing and a
// persistent history; anything else is scanned line by line.
func NewLineSource(f *os.File) LineSource {
	if !term.IsTerminal(int(f.Fd())) {
		return NewReaderSource(f)
	}

	cfg := &readline.Config{
		Prompt:                 prompt,
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
		Stdin:                  f,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, historyFileName)
	}

	rl, err := readline.NewFromConfig(cfg)
	if err != nil {
		return NewReaderSource(f)
	}
	return &editorSource{rl: rl}
}

// NewReaderSource scans lines from r.  If r is an io.Closer, Close
// closes it.
func NewReaderSource(r io.Reader) LineSource {
	s := &scanSource{sc: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// ── scanner ──────────────────────────────────────────────────────────

type scanSource struct {
	sc     *bufio.Scanner
	closer io.Closer
}

func (s *scanSource) ReadLine() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

func (s *scanSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ── line editor ──────────────────────────────────────────────────────

type editorSource struct {
	rl *readline.Instance
}

// ReadLine maps Ctrl-C and Ctrl-D to io.EOF.
func (s *editorSource) ReadLine() (string, error) {
	line, err := s.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		s.rl.SaveToHistory(trimmed) //nolint:errcheck
	}
	return line, nil
}

func (s *editorSource) Close() error {
	return s.rl.Close()
}
