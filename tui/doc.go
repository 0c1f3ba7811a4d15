// Package tui is the terminal shell of the game, built on Bubbletea.
//
// Key presses are bound with bubbles/key, turned into shell intents and run
// through a shell.Controller, so the terminal follows the same win, restart
// and quit rules as every other shell. Boards are drawn with lipgloss. The
// solver can play the round on its own (autoplay) or suggest the next move.
package tui
