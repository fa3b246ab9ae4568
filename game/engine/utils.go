package engine

// FirstFreeCell returns the first board cell, in row-major order, not covered by snake
func FirstFreeCell(snake []Cell) (Cell, bool) {
	occupied := make(map[Cell]bool, len(snake))
	for _, c := range snake {
		occupied[c] = true
	}
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			c := Cell{X: x, Y: y}
			if !occupied[c] {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Cell) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// SafeDirections returns the directions that would not end the run on the next tick
func SafeDirections(state *GameState) []Direction {
	var safe []Direction
	for _, d := range Directions {
		if d == state.Direction.Opposite() {
			continue
		}
		next := state.Head().Add(d)
		if next.InBounds() && !state.Occupies(next) {
			safe = append(safe, d)
		}
	}
	return safe
}

// RenderBoard draws the board as rows of text: H head, S body, F food, '.' empty
func RenderBoard(state *GameState) []string {
	grid := make([][]byte, GridSize)
	for y := range grid {
		grid[y] = make([]byte, GridSize)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}
	if state.Food.InBounds() {
		grid[state.Food.Y][state.Food.X] = 'F'
	}
	for i, c := range state.Snake {
		if !c.InBounds() {
			continue
		}
		if i == 0 {
			grid[c.Y][c.X] = 'H'
		} else {
			grid[c.Y][c.X] = 'S'
		}
	}

	rows := make([]string, GridSize)
	for y := range grid {
		rows[y] = string(grid[y])
	}
	return rows
}
