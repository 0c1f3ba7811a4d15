package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/coincrate/game/engine"
)

// WinBanner is shown under the board once the round is won
const WinBanner = "YOU WIN! Press R to restart or Esc to quit"

// HelpLine is shown under the board while the round is being played
const HelpLine = "Arrow keys or WASD => move the player\nR => restart, Esc => exit."

// Game is the part of the engine a controller drives
type Game interface {
	Move(dir engine.Direction) engine.MoveOutcome
	Restart() (*engine.Snapshot, error)
	Snapshot() *engine.Snapshot
}

// Result describes what a single intent did
type Result struct {
	Intent    Intent
	Outcome   engine.MoveOutcome
	Snapshot  *engine.Snapshot
	Moved     bool // a move intent reached the engine
	Won       bool // this move collected the last coin
	Restarted bool
	Ignored   bool // a move sent after the round was won
	Quit      bool
}

// Renderer draws the state after every intent. Returning an error stops Run.
type Renderer func(Result) error

// Controller runs the play, win, restart and quit loop over a Game
type Controller struct {
	game   Game
	log    logrus.FieldLogger
	rounds int
	wins   int
}

// NewController creates a controller for game
func NewController(game Game) *Controller {
	return &Controller{game: game, log: logrus.StandardLogger(), rounds: 1}
}

// SetLogger replaces the logger used for round transitions
func (c *Controller) SetLogger(log logrus.FieldLogger) {
	c.log = log
}

// Rounds returns how many rounds have been started, including the current one
func (c *Controller) Rounds() int {
	return c.rounds
}

// Snapshot returns the current state of the round
func (c *Controller) Snapshot() *engine.Snapshot {
	return c.game.Snapshot()
}

// Wins returns how many rounds have been won
func (c *Controller) Wins() int {
	return c.wins
}

// Apply resolves one intent. Once the round is won only restart and quit
// have an effect; moves come back with Ignored set.
func (c *Controller) Apply(intent Intent) (Result, error) {
	result := Result{Intent: intent}

	switch intent.Kind {
	case IntentQuit:
		result.Quit = true

	case IntentRestart:
		snapshot, err := c.game.Restart()
		if err != nil {
			return result, fmt.Errorf("failed to restart round: %w", err)
		}
		c.rounds++
		result.Restarted = true
		result.Snapshot = snapshot
		c.log.WithField("round", snapshot.RoundID).Debug("Round restarted")
		return result, nil

	case IntentMove:
		if c.game.Snapshot().Status == engine.Won {
			result.Ignored = true
			result.Outcome = engine.Blocked
			break
		}
		result.Moved = true
		result.Outcome = c.game.Move(intent.Direction)
		snapshot := c.game.Snapshot()
		if snapshot.Status == engine.Won {
			c.wins++
			result.Won = true
			c.log.WithFields(logrus.Fields{
				"round": snapshot.RoundID,
				"coins": snapshot.CoinsCollected,
			}).Debug("Round won")
		}
		result.Snapshot = snapshot
		return result, nil

	default:
		return result, fmt.Errorf("%w: %s", ErrUnknownIntent, intent.Kind)
	}

	result.Snapshot = c.game.Snapshot()
	return result, nil
}

// Run renders the current round, then applies intents from src until it is
// exhausted, a quit intent arrives or ctx is cancelled.
func (c *Controller) Run(ctx context.Context, src IntentSource, render Renderer) error {
	if err := render(Result{Snapshot: c.game.Snapshot()}); err != nil {
		return err
	}

	for {
		intent, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		result, err := c.Apply(intent)
		if err != nil {
			return err
		}
		if err := render(result); err != nil {
			return err
		}
		if result.Quit {
			return nil
		}
	}
}

// Frame draws a snapshot as the text screen of the console game: the coin
// counter, the board and either the win banner or the key help.
func Frame(s *engine.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Coins: %d/%d\n\n", s.CoinsCollected, s.TotalCoins)
	for _, row := range s.Board {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if s.Status == engine.Won {
		b.WriteString(WinBanner)
	} else {
		b.WriteString(HelpLine)
	}
	b.WriteByte('\n')
	return b.String()
}

// TextRenderer writes a Frame for every result to w
func TextRenderer(w io.Writer) Renderer {
	return func(r Result) error {
		if r.Snapshot == nil {
			return nil
		}
		_, err := io.WriteString(w, Frame(r.Snapshot))
		return err
	}
}
