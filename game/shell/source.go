package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// IntentSource feeds intents to a Controller. Next blocks until an intent
// is available and returns io.EOF once the source is exhausted.
type IntentSource interface {
	Next(ctx context.Context) (Intent, error)
}

// ReaderSource reads intents from line-based text such as a piped script.
// A line may hold several intents separated by spaces or commas. Blank
// lines and lines starting with '#' are skipped.
type ReaderSource struct {
	scanner *bufio.Scanner
	pending []string
	line    int
}

// NewReaderSource creates a source reading from r
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{scanner: bufio.NewScanner(r)}
}

// Next returns the next intent in the script
func (s *ReaderSource) Next(ctx context.Context) (Intent, error) {
	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return Intent{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Intent{}, err
			}
			return Intent{}, io.EOF
		}
		s.line++

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		s.pending = strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
	}

	token := s.pending[0]
	s.pending = s.pending[1:]

	intent, err := ParseIntent(token)
	if err != nil {
		return Intent{}, fmt.Errorf("line %d: %w", s.line, err)
	}
	return intent, nil
}

// SliceSource replays a fixed list of intents
type SliceSource struct {
	intents []Intent
	next    int
}

// NewSliceSource creates a source replaying intents in order
func NewSliceSource(intents ...Intent) *SliceSource {
	return &SliceSource{intents: intents}
}

// Next returns the next intent or io.EOF when all have been replayed
func (s *SliceSource) Next(ctx context.Context) (Intent, error) {
	if err := ctx.Err(); err != nil {
		return Intent{}, err
	}
	if s.next >= len(s.intents) {
		return Intent{}, io.EOF
	}
	intent := s.intents[s.next]
	s.next++
	return intent, nil
}

// Remaining returns how many intents have not been replayed yet
func (s *SliceSource) Remaining() int {
	return len(s.intents) - s.next
}
