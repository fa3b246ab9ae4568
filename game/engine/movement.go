package engine

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// advance runs one tick of the game on a running, unpaused state
func (gs *GameState) advance(d *Difficulty, rng *rand.Rand) Result {
	gs.Events = nil
	gs.Ticks++

	// Adopt pending direction as the effective direction for this tick
	gs.Direction = gs.PendingDirection
	head := gs.Head().Add(gs.Direction)

	if !head.InBounds() {
		return gs.endRun(ReasonWall, fmt.Sprintf("Hit the wall at (%d,%d)! Game Over!", head.X, head.Y))
	}

	// The tail has not moved yet, so stepping onto it counts as a collision
	if gs.Occupies(head) {
		return gs.endRun(ReasonSelf, fmt.Sprintf("Ran into yourself at (%d,%d)! Game Over!", head.X, head.Y))
	}

	gs.Snake = append([]Cell{head}, gs.Snake...)

	if head != gs.Food {
		gs.Snake = gs.Snake[:len(gs.Snake)-1]
		gs.LastResult = ResultMoved
		return ResultMoved
	}

	gs.Score++
	gs.Events = append(gs.Events, EventAte)
	gs.Message = fmt.Sprintf("Yum! Score: %d", gs.Score)

	if !gs.placeFood(rng) {
		return gs.endRun(ReasonBoardFull, "The board is full! Game Over!")
	}
	gs.updateLevel(d)

	gs.LastResult = ResultAte
	return ResultAte
}

// updateLevel recomputes the level after a score change and speeds up on level-up
func (gs *GameState) updateLevel(d *Difficulty) {
	newLevel := LevelForScore(gs.Score, d.LevelThreshold)
	if newLevel <= gs.Level {
		return
	}

	gs.Level = newLevel
	gs.IntervalMs = nextInterval(gs.IntervalMs, d.SpeedDecrementMs)
	gs.Events = append(gs.Events, EventLevelUp)
	gs.Message = fmt.Sprintf("Level up! Level %d", gs.Level)
}

// endRun moves the state into the terminal GameOver state
func (gs *GameState) endRun(reason, message string) Result {
	gs.Running = false
	gs.Paused = false
	gs.GameOver = true
	gs.GameOverReason = reason
	gs.Message = message
	gs.LastResult = ResultGameOver
	gs.Events = append(gs.Events, EventGameOver)
	return ResultGameOver
}

// placeFood puts food on a random free cell. Random draws are bounded by
// MaxFoodAttempts, then the board is scanned for the first free cell.
// It returns false when the snake covers the whole board.
func (gs *GameState) placeFood(rng *rand.Rand) bool {
	for attempt := 0; attempt < MaxFoodAttempts; attempt++ {
		c := Cell{X: rng.Intn(GridSize), Y: rng.Intn(GridSize)}
		if !gs.Occupies(c) {
			gs.Food = c
			return true
		}
	}

	if c, ok := FirstFreeCell(gs.Snake); ok {
		gs.Food = c
		return true
	}
	return false
}
