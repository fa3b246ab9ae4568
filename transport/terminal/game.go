package terminal

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/input"
	"github.com/wricardo/mcp-training/snakegame/game/scheduler"
)

// redraw is posted by the tick goroutine after the state changed
type redraw struct{}

// interrupted is posted when the run context is cancelled
type interrupted struct{}

// Game plays one local session on a terminal screen
type Game struct {
	screen   tcell.Screen
	renderer *Renderer
	engine   *engine.GameEngine
	sched    *scheduler.Scheduler
}

// NewGame wires an engine, its scheduler and a renderer to screen. keeper may
// be nil.
func NewGame(screen tcell.Screen, difficulty *engine.Difficulty, keeper engine.ScoreKeeper) (*Game, error) {
	g := &Game{
		screen:   screen,
		renderer: NewRenderer(screen),
	}
	g.sched = scheduler.New(g.tick)

	opts := []engine.Option{
		engine.WithSpeedListener(g.sched.SetPeriod),
		engine.WithSoundPlayer(engine.SoundFunc(g.beep)),
	}
	if keeper != nil {
		opts = append(opts, engine.WithScoreKeeper(keeper))
	}

	eng, err := engine.NewEngine(difficulty, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	g.engine = eng
	return g, nil
}

// Engine returns the game's engine
func (g *Game) Engine() *engine.GameEngine {
	return g.engine
}

func (g *Game) tick() bool {
	if g.engine.Tick() != engine.ResultNone {
		g.screen.PostEvent(tcell.NewEventInterrupt(redraw{}))
	}
	return g.engine.IsRunning()
}

func (g *Game) beep(engine.Event) {
	g.screen.Beep()
}

// Run draws the game and processes key events until the player quits from
// the menu, presses Ctrl+C, or ctx is cancelled
func (g *Game) Run(ctx context.Context) error {
	defer g.sched.Stop()

	stop := context.AfterFunc(ctx, func() {
		g.screen.PostEvent(tcell.NewEventInterrupt(interrupted{}))
	})
	defer stop()

	g.draw()
	for {
		switch ev := g.screen.PollEvent().(type) {
		case nil:
			// Screen finalized
			return nil
		case *tcell.EventResize:
			g.screen.Sync()
			g.draw()
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(interrupted); ok {
				return ctx.Err()
			}
			g.draw()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			cmd, ok := CommandForKey(ev)
			if !ok {
				continue
			}
			if g.Apply(cmd) {
				return nil
			}
			g.draw()
		}
	}
}

// Apply executes a command and reports whether the player asked to leave.
// Quit during a run returns to the menu; quit from the menu leaves.
func (g *Game) Apply(cmd input.Command) bool {
	running, paused := g.engine.IsRunning(), g.engine.IsPaused()

	if cmd.Action == input.ActionQuit {
		if !running {
			return true
		}
		g.sched.Stop()
		g.engine.Stop()
		return false
	}

	if !input.Allowed(cmd, running, paused) {
		return false
	}

	switch cmd.Action {
	case input.ActionDirection:
		g.engine.SetDirection(cmd.Direction)
	case input.ActionPause:
		g.engine.TogglePause()
	case input.ActionStart:
		g.startRun()
	case input.ActionSound:
		g.engine.ToggleSound()
	}
	return false
}

func (g *Game) startRun() {
	g.sched.Stop()
	if err := g.engine.Start(nil); err != nil {
		log.Printf("Failed to start game: %v", err)
		return
	}
	if err := g.sched.Start(g.engine.GetInterval()); err != nil {
		log.Printf("Failed to start scheduler: %v", err)
	}
}

func (g *Game) draw() {
	g.renderer.Draw(g.engine.GetState())
}

// Play runs a game on the process terminal
func Play(ctx context.Context, difficulty *engine.Difficulty, keeper engine.ScoreKeeper) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	game, err := NewGame(screen, difficulty, keeper)
	if err != nil {
		return err
	}
	return game.Run(ctx)
}
