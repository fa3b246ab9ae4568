package main

import (
	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

// Strategy chooses the direction for the next tick
type Strategy interface {
	NextMove(state *engine.GameState) engine.Direction
}

// GreedyStrategy follows the shortest path to the food as long as the head
// keeps enough room afterwards; otherwise it moves into the largest free area.
// The whole snake counts as an obstacle, including the tail cell.
type GreedyStrategy struct{}

// NewGreedyStrategy creates a greedy food-chasing strategy
func NewGreedyStrategy() *GreedyStrategy {
	return &GreedyStrategy{}
}

// NextMove returns the chosen direction. With no safe move left it keeps the
// current direction.
func (s *GreedyStrategy) NextMove(state *engine.GameState) engine.Direction {
	safe := engine.SafeDirections(state)
	if len(safe) == 0 {
		return state.Direction
	}

	blocked := occupied(state.Snake)
	head := state.Head()

	if first, ok := pathStart(head, state.Food, blocked, state.Direction); ok {
		next := head.Add(first)
		// Eating grows the snake, so it needs one more cell of room
		if next == state.Food || floodSize(next, blocked) >= len(state.Snake) {
			return first
		}
	}

	best := safe[0]
	bestRoom, bestDist := -1, 0
	for _, d := range safe {
		next := head.Add(d)
		room := floodSize(next, blocked)
		dist := engine.ManhattanDistance(next, state.Food)
		if room > bestRoom || (room == bestRoom && dist < bestDist) {
			best, bestRoom, bestDist = d, room, dist
		}
	}
	return best
}

func occupied(snake []engine.Cell) map[engine.Cell]bool {
	blocked := make(map[engine.Cell]bool, len(snake))
	for _, c := range snake {
		blocked[c] = true
	}
	return blocked
}

// pathStart runs a breadth-first search from head to target and returns the
// first step of a shortest path. Reversing onto current is not allowed.
func pathStart(head, target engine.Cell, blocked map[engine.Cell]bool, current engine.Direction) (engine.Direction, bool) {
	type node struct {
		cell  engine.Cell
		first engine.Direction
	}

	visited := map[engine.Cell]bool{head: true}
	var queue []node
	for _, d := range engine.Directions {
		if d == current.Opposite() {
			continue
		}
		next := head.Add(d)
		if !next.InBounds() || blocked[next] {
			continue
		}
		visited[next] = true
		queue = append(queue, node{cell: next, first: d})
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n.cell == target {
			return n.first, true
		}
		for _, d := range engine.Directions {
			next := n.cell.Add(d)
			if !next.InBounds() || blocked[next] || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, node{cell: next, first: n.first})
		}
	}
	return engine.Direction{}, false
}

// floodSize counts the free cells reachable from start, start included
func floodSize(start engine.Cell, blocked map[engine.Cell]bool) int {
	if !start.InBounds() || blocked[start] {
		return 0
	}

	visited := map[engine.Cell]bool{start: true}
	queue := []engine.Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range engine.Directions {
			next := c.Add(d)
			if !next.InBounds() || blocked[next] || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return len(visited)
}
