package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

// MinSwipeDistance is the smallest swipe, in pixels along either axis, that turns the snake
const MinSwipeDistance = 30

var (
	ErrUnknownInput = errors.New("unknown input")
	ErrInvalidInput = errors.New("invalid input")
)

// Action is what an input asks the game to do
type Action string

const (
	ActionNone      Action = ""
	ActionDirection Action = "direction"
	ActionPause     Action = "pause"
	ActionStart     Action = "start"
	ActionQuit      Action = "quit"
	ActionSound     Action = "sound"
)

// Command is a normalized input. Direction is only set for ActionDirection.
type Command struct {
	Action    Action           `json:"action"`
	Direction engine.Direction `json:"direction,omitempty"`
}

func (c Command) String() string {
	if c.Action == ActionDirection {
		return fmt.Sprintf("direction:%s", c.Direction)
	}
	return string(c.Action)
}

func directionCommand(d engine.Direction) Command {
	return Command{Action: ActionDirection, Direction: d}
}

var keyCommands = map[string]Command{
	"ArrowUp":    directionCommand(engine.Up),
	"w":          directionCommand(engine.Up),
	"W":          directionCommand(engine.Up),
	"ArrowDown":  directionCommand(engine.Down),
	"s":          directionCommand(engine.Down),
	"S":          directionCommand(engine.Down),
	"ArrowLeft":  directionCommand(engine.Left),
	"a":          directionCommand(engine.Left),
	"A":          directionCommand(engine.Left),
	"ArrowRight": directionCommand(engine.Right),
	"d":          directionCommand(engine.Right),
	"D":          directionCommand(engine.Right),
	" ":          {Action: ActionPause},
	"Space":      {Action: ActionPause},
	"Escape":     {Action: ActionPause},
	"Enter":      {Action: ActionStart},
	"q":          {Action: ActionQuit},
	"Q":          {Action: ActionQuit},
	"m":          {Action: ActionSound},
	"M":          {Action: ActionSound},
}

var buttonCommands = map[string]Command{
	"up":      directionCommand(engine.Up),
	"down":    directionCommand(engine.Down),
	"left":    directionCommand(engine.Left),
	"right":   directionCommand(engine.Right),
	"pause":   {Action: ActionPause},
	"resume":  {Action: ActionPause},
	"start":   {Action: ActionStart},
	"restart": {Action: ActionStart},
	"quit":    {Action: ActionQuit},
	"menu":    {Action: ActionQuit},
	"sound":   {Action: ActionSound},
}

// FromKey maps a browser-style key name (KeyboardEvent.key) to a command
func FromKey(key string) (Command, error) {
	cmd, ok := keyCommands[key]
	if !ok {
		return Command{}, fmt.Errorf("%w: key %q", ErrUnknownInput, key)
	}
	return cmd, nil
}

// FromButton maps an on-screen button name to a command
func FromButton(name string) (Command, error) {
	cmd, ok := buttonCommands[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Command{}, fmt.Errorf("%w: button %q", ErrUnknownInput, name)
	}
	return cmd, nil
}

// FromSwipe turns a touch swipe delta into a direction. Swipes shorter than
// MinSwipeDistance on both axes are ignored (ok=false). The longer axis
// wins; equal lengths count as vertical.
func FromSwipe(dx, dy float64) (Command, bool) {
	ax, ay := abs(dx), abs(dy)
	if ax < MinSwipeDistance && ay < MinSwipeDistance {
		return Command{}, false
	}

	if ax > ay {
		if dx > 0 {
			return directionCommand(engine.Right), true
		}
		return directionCommand(engine.Left), true
	}
	if dy > 0 {
		return directionCommand(engine.Down), true
	}
	return directionCommand(engine.Up), true
}

// Allowed reports whether a command should reach the game in its current
// state. Direction changes are dropped unless the game is running and not
// paused, and pause only applies to a running game.
func Allowed(cmd Command, running, paused bool) bool {
	switch cmd.Action {
	case ActionDirection:
		return running && !paused
	case ActionPause:
		return running
	case ActionNone:
		return false
	default:
		return true
	}
}

// Message is an input event as delivered by a client
type Message struct {
	Type   string  `json:"type"`
	Key    string  `json:"key,omitempty"`
	Button string  `json:"button,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
}

// Parse normalizes a client message. A swipe that is too short yields a
// command with ActionNone and no error.
func Parse(msg Message) (Command, error) {
	switch msg.Type {
	case "key":
		return FromKey(msg.Key)
	case "button":
		return FromButton(msg.Button)
	case "swipe":
		cmd, ok := FromSwipe(msg.DX, msg.DY)
		if !ok {
			return Command{Action: ActionNone}, nil
		}
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("%w: type %q", ErrInvalidInput, msg.Type)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
