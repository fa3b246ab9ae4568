package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mcp-training/snakegame/game/input"
)

// keyNames maps special tcell keys to the browser key names package input understands
var keyNames = map[tcell.Key]string{
	tcell.KeyUp:     "ArrowUp",
	tcell.KeyDown:   "ArrowDown",
	tcell.KeyLeft:   "ArrowLeft",
	tcell.KeyRight:  "ArrowRight",
	tcell.KeyEnter:  "Enter",
	tcell.KeyEscape: "Escape",
}

// KeyName returns the browser-style name of a key event, or "" when the key
// has none
func KeyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		return string(ev.Rune())
	}
	return keyNames[ev.Key()]
}

// CommandForKey maps a key event to a game command. Ctrl+C always quits.
func CommandForKey(ev *tcell.EventKey) (input.Command, bool) {
	if ev.Key() == tcell.KeyCtrlC {
		return input.Command{Action: input.ActionQuit}, true
	}

	name := KeyName(ev)
	if name == "" {
		return input.Command{}, false
	}

	cmd, err := input.FromKey(name)
	if err != nil {
		return input.Command{}, false
	}
	return cmd, true
}
