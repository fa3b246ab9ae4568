package input

import (
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

func TestFromKey(t *testing.T) {
	tests := []struct {
		key  string
		want Command
	}{
		{"ArrowUp", Command{Action: ActionDirection, Direction: engine.Up}},
		{"w", Command{Action: ActionDirection, Direction: engine.Up}},
		{"W", Command{Action: ActionDirection, Direction: engine.Up}},
		{"ArrowDown", Command{Action: ActionDirection, Direction: engine.Down}},
		{"s", Command{Action: ActionDirection, Direction: engine.Down}},
		{"S", Command{Action: ActionDirection, Direction: engine.Down}},
		{"ArrowLeft", Command{Action: ActionDirection, Direction: engine.Left}},
		{"a", Command{Action: ActionDirection, Direction: engine.Left}},
		{"A", Command{Action: ActionDirection, Direction: engine.Left}},
		{"ArrowRight", Command{Action: ActionDirection, Direction: engine.Right}},
		{"d", Command{Action: ActionDirection, Direction: engine.Right}},
		{"D", Command{Action: ActionDirection, Direction: engine.Right}},
		{" ", Command{Action: ActionPause}},
		{"Space", Command{Action: ActionPause}},
		{"Escape", Command{Action: ActionPause}},
		{"Enter", Command{Action: ActionStart}},
		{"q", Command{Action: ActionQuit}},
		{"m", Command{Action: ActionSound}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := FromKey(tt.key)
			if err != nil {
				t.Fatalf("FromKey(%q) failed: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("FromKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestFromKey_Unknown(t *testing.T) {
	for _, key := range []string{"", "x", "ArrowUpp", "Tab"} {
		if _, err := FromKey(key); !errors.Is(err, ErrUnknownInput) {
			t.Errorf("FromKey(%q): expected ErrUnknownInput, got %v", key, err)
		}
	}
}

func TestFromButton(t *testing.T) {
	tests := []struct {
		button string
		want   Command
	}{
		{"up", Command{Action: ActionDirection, Direction: engine.Up}},
		{"Down", Command{Action: ActionDirection, Direction: engine.Down}},
		{" left ", Command{Action: ActionDirection, Direction: engine.Left}},
		{"RIGHT", Command{Action: ActionDirection, Direction: engine.Right}},
		{"pause", Command{Action: ActionPause}},
		{"resume", Command{Action: ActionPause}},
		{"start", Command{Action: ActionStart}},
		{"restart", Command{Action: ActionStart}},
		{"quit", Command{Action: ActionQuit}},
		{"menu", Command{Action: ActionQuit}},
		{"sound", Command{Action: ActionSound}},
	}

	for _, tt := range tests {
		t.Run(tt.button, func(t *testing.T) {
			got, err := FromButton(tt.button)
			if err != nil {
				t.Fatalf("FromButton(%q) failed: %v", tt.button, err)
			}
			if got != tt.want {
				t.Errorf("FromButton(%q) = %v, want %v", tt.button, got, tt.want)
			}
		})
	}

	if _, err := FromButton("jump"); !errors.Is(err, ErrUnknownInput) {
		t.Errorf("Expected ErrUnknownInput for unknown button, got %v", err)
	}
}

func TestFromSwipe(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   engine.Direction
		ok     bool
	}{
		{"too short", 10, -29, engine.Direction{}, false},
		{"right", 80, 10, engine.Right, true},
		{"left", -31, 0, engine.Left, true},
		{"down", 5, 40, engine.Down, true},
		{"up", -20, -100, engine.Up, true},
		{"diagonal tie is vertical", 50, 50, engine.Down, true},
		{"exactly min distance", 30, 0, engine.Right, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromSwipe(tt.dx, tt.dy)
			if ok != tt.ok {
				t.Fatalf("FromSwipe(%v,%v) ok = %v, want %v", tt.dx, tt.dy, ok, tt.ok)
			}
			if ok && got.Direction != tt.want {
				t.Errorf("FromSwipe(%v,%v) = %v, want %v", tt.dx, tt.dy, got.Direction, tt.want)
			}
		})
	}
}

func TestAllowed(t *testing.T) {
	dir := Command{Action: ActionDirection, Direction: engine.Up}
	pause := Command{Action: ActionPause}
	start := Command{Action: ActionStart}

	tests := []struct {
		name            string
		cmd             Command
		running, paused bool
		want            bool
	}{
		{"direction while running", dir, true, false, true},
		{"direction while paused", dir, true, true, false},
		{"direction while idle", dir, false, false, false},
		{"pause while running", pause, true, false, true},
		{"resume while paused", pause, true, true, true},
		{"pause while idle", pause, false, false, false},
		{"start while idle", start, false, false, true},
		{"start while running", start, true, false, true},
		{"none", Command{}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.cmd, tt.running, tt.paused); got != tt.want {
				t.Errorf("Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	cmd, err := Parse(Message{Type: "key", Key: "ArrowLeft"})
	if err != nil || cmd.Direction != engine.Left {
		t.Errorf("Expected left from key message, got %v (%v)", cmd, err)
	}

	cmd, err = Parse(Message{Type: "button", Button: "pause"})
	if err != nil || cmd.Action != ActionPause {
		t.Errorf("Expected pause from button message, got %v (%v)", cmd, err)
	}

	cmd, err = Parse(Message{Type: "swipe", DX: 0, DY: -45})
	if err != nil || cmd.Direction != engine.Up {
		t.Errorf("Expected up from swipe message, got %v (%v)", cmd, err)
	}

	cmd, err = Parse(Message{Type: "swipe", DX: 3, DY: 3})
	if err != nil || cmd.Action != ActionNone {
		t.Errorf("Expected no-op for short swipe, got %v (%v)", cmd, err)
	}

	if _, err := Parse(Message{Type: "gamepad"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCommand_String(t *testing.T) {
	if s := (Command{Action: ActionDirection, Direction: engine.Up}).String(); s != "direction:up" {
		t.Errorf("Expected direction:up, got %q", s)
	}
	if s := (Command{Action: ActionPause}).String(); s != "pause" {
		t.Errorf("Expected pause, got %q", s)
	}
}
