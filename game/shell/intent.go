package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/coincrate/game/engine"
)

// ErrUnknownIntent is returned when input names no move, restart or quit
var ErrUnknownIntent = errors.New("unknown intent")

// IntentKind distinguishes moves from the round control requests
type IntentKind int

const (
	IntentMove IntentKind = iota
	IntentRestart
	IntentQuit
)

func (k IntentKind) String() string {
	switch k {
	case IntentMove:
		return "move"
	case IntentRestart:
		return "restart"
	case IntentQuit:
		return "quit"
	}
	return fmt.Sprintf("intent(%d)", int(k))
}

// Intent is one request from a player: move in a direction, restart or quit.
// Direction is only meaningful for IntentMove.
type Intent struct {
	Kind      IntentKind
	Direction engine.Direction
}

// Move returns a move intent
func Move(dir engine.Direction) Intent {
	return Intent{Kind: IntentMove, Direction: dir}
}

// Restart returns a restart intent
func Restart() Intent {
	return Intent{Kind: IntentRestart}
}

// Quit returns a quit intent
func Quit() Intent {
	return Intent{Kind: IntentQuit}
}

func (i Intent) String() string {
	if i.Kind == IntentMove {
		return i.Direction.String()
	}
	return i.Kind.String()
}

// MarshalText encodes the intent the way ParseIntent reads it back
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes any spelling accepted by ParseIntent
func (i *Intent) UnmarshalText(text []byte) error {
	parsed, err := ParseIntent(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseIntent reads a single intent, case-insensitive. "r" and "restart"
// restart the round; "esc", "escape", "q", "quit" and "exit" quit; anything
// engine.ParseDirection accepts is a move.
func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "restart":
		return Restart(), nil
	case "esc", "escape", "q", "quit", "exit":
		return Quit(), nil
	}

	dir, err := engine.ParseDirection(s)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownIntent, s)
	}
	return Move(dir), nil
}
