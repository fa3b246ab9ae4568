// Command autoplay plays Snake against a running server through the REST API.
// It creates a manual session, picks every turn with a greedy strategy and
// steps the game one tick at a time, then reports the best score.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

// Options controls a series of games
type Options struct {
	Games    int
	MaxSteps int
	Delay    time.Duration
	Verbose  bool
}

// Summary is the outcome of a series of games
type Summary struct {
	Games      int
	BestScore  int
	TotalScore int
	Steps      int
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play Snake through the REST API with a greedy strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "difficulty", Value: "", Usage: "Difficulty profile (server default when empty)"},
			&cli.IntFlag{Name: "games", Value: 5, Usage: "Number of games to play"},
			&cli.IntFlag{Name: "max-steps", Value: 5000, Usage: "Maximum steps per game"},
			&cli.DurationFlag{Name: "delay", Value: 0, Usage: "Delay between steps"},
			&cli.BoolFlag{Name: "keep", Usage: "Keep the session after playing"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	serverURL := cmd.String("url")
	log.Printf("Connecting to game server at %s", serverURL)
	client := NewClient(serverURL)

	session, err := client.CreateSession(ctx, cmd.String("difficulty"))
	if err != nil {
		return err
	}
	log.Printf("✨ Session created: %s (%s)", session.ID, session.DifficultyID)

	if !cmd.Bool("keep") {
		defer func() {
			if err := client.DeleteSession(context.Background()); err != nil {
				log.Printf("Warning: %v", err)
			}
		}()
	}

	opts := Options{
		Games:    int(cmd.Int("games")),
		MaxSteps: int(cmd.Int("max-steps")),
		Delay:    cmd.Duration("delay"),
		Verbose:  cmd.Bool("v"),
	}

	summary, err := PlaySeries(ctx, client, NewGreedyStrategy(), opts)
	if err != nil {
		return err
	}

	avg := 0.0
	if summary.Games > 0 {
		avg = float64(summary.TotalScore) / float64(summary.Games)
	}
	log.Printf("🏁 Games: %d, Best: %d, Average: %.1f, Steps: %d", summary.Games, summary.BestScore, avg, summary.Steps)
	return nil
}

// PlaySeries plays opts.Games games in the client's session
func PlaySeries(ctx context.Context, client *Client, strategy Strategy, opts Options) (*Summary, error) {
	summary := &Summary{}

	for game := 1; game <= opts.Games; game++ {
		log.Printf("=== 🎮 Game %d/%d ===", game, opts.Games)

		state, steps, err := PlayGame(ctx, client, strategy, opts)
		if err != nil {
			return summary, fmt.Errorf("game %d: %w", game, err)
		}

		summary.Games++
		summary.Steps += steps
		summary.TotalScore += state.Score
		if state.Score > summary.BestScore {
			summary.BestScore = state.Score
		}

		reason := state.GameOverReason
		if !state.GameOver {
			reason = "step limit"
		}
		log.Printf("Game %d: Score=%d, Level=%d, Length=%d, Steps=%d, End=%s",
			game, state.Score, state.Level, len(state.Snake), steps, reason)
		if state.NewHighScore {
			log.Printf("🏆 New high score: %d", state.Score)
		}
	}
	return summary, nil
}

// PlayGame starts a run and steps it until game over or opts.MaxSteps. It
// returns the final state and the number of steps taken.
func PlayGame(ctx context.Context, client *Client, strategy Strategy, opts Options) (*engine.GameState, int, error) {
	state, err := client.Start(ctx)
	if err != nil {
		return nil, 0, err
	}

	steps := 0
	for !state.GameOver && steps < opts.MaxSteps {
		if err := ctx.Err(); err != nil {
			return state, steps, err
		}

		if opts.Verbose && steps%50 == 0 {
			log.Printf("Head: (%d,%d), Food: (%d,%d), Score: %d",
				state.Head().X, state.Head().Y, state.Food.X, state.Food.Y, state.Score)
		}

		if next := strategy.NextMove(state); next != state.Direction {
			if _, err := client.SetDirection(ctx, next); err != nil {
				return state, steps, err
			}
		}

		result, err := client.Step(ctx)
		if err != nil {
			return state, steps, err
		}
		state = result.GameState
		steps++

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}
	return state, steps, nil
}
