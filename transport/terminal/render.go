package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

// Board layout: a HUD line, then the bordered board with two screen columns
// per cell, then a status line.
const (
	hudRow      = 0
	boardTop    = 1
	cellWidth   = 2
	boardWidth  = engine.GridSize*cellWidth + 2
	boardHeight = engine.GridSize + 2
	statusRow   = boardTop + boardHeight
	minWidth    = boardWidth
	minHeight   = statusRow + 1
)

// Glyphs drawn in the first column of a board cell
const (
	HeadGlyph = '@'
	BodyGlyph = 'o'
	FoodGlyph = '*'
)

// Theme holds the styles used to draw the game
type Theme struct {
	Text   tcell.Style
	Border tcell.Style
	Head   tcell.Style
	Body   tcell.Style
	Food   tcell.Style
	Alert  tcell.Style
}

// DefaultTheme is a green snake on the terminal's own background
var DefaultTheme = Theme{
	Text:   tcell.StyleDefault.Foreground(tcell.ColorWhite),
	Border: tcell.StyleDefault.Foreground(tcell.ColorGray),
	Head:   tcell.StyleDefault.Foreground(tcell.ColorLawnGreen).Bold(true),
	Body:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
	Food:   tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	Alert:  tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
}

// Renderer draws game states onto a tcell screen
type Renderer struct {
	screen tcell.Screen
	theme  Theme
}

// NewRenderer creates a renderer using DefaultTheme
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, theme: DefaultTheme}
}

// CellPosition returns the screen coordinates of a board cell
func CellPosition(c engine.Cell) (x, y int) {
	return 1 + c.X*cellWidth, boardTop + 1 + c.Y
}

// Draw renders the HUD, board and status line for state
func (r *Renderer) Draw(state *engine.GameState) {
	s := r.screen
	s.Clear()

	w, h := s.Size()
	if w < minWidth || h < minHeight {
		drawText(s, 0, 0, fmt.Sprintf("Terminal too small: need %dx%d", minWidth, minHeight), r.theme.Alert)
		s.Show()
		return
	}

	r.drawHUD(state)
	r.drawBorder()

	if state.Running || state.GameOver {
		if state.Food.InBounds() {
			x, y := CellPosition(state.Food)
			s.SetContent(x, y, FoodGlyph, nil, r.theme.Food)
		}
		// Body first so the head wins when segments overlap after a crash
		for i := len(state.Snake) - 1; i >= 0; i-- {
			c := state.Snake[i]
			if !c.InBounds() {
				continue
			}
			x, y := CellPosition(c)
			if i == 0 {
				s.SetContent(x, y, HeadGlyph, nil, r.theme.Head)
			} else {
				s.SetContent(x, y, BodyGlyph, nil, r.theme.Body)
			}
		}
	}

	if banner := bannerFor(state); banner != "" {
		drawCentered(s, boardWidth/2, boardTop+boardHeight/2, banner, r.theme.Alert)
	}

	drawText(s, 0, statusRow, statusFor(state), r.theme.Text)
	s.Show()
}

func (r *Renderer) drawHUD(state *engine.GameState) {
	sound := "off"
	if state.SoundEnabled {
		sound = "on"
	}
	hud := fmt.Sprintf("SNAKE  Score: %d  Level: %d  High: %d  %dms  Sound: %s",
		state.Score, state.Level, state.HighScore, state.IntervalMs, sound)
	drawText(r.screen, 0, hudRow, hud, r.theme.Text)
}

func (r *Renderer) drawBorder() {
	s := r.screen
	top, bottom := boardTop, boardTop+boardHeight-1
	right := boardWidth - 1

	for x := 1; x < right; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, r.theme.Border)
		s.SetContent(x, bottom, tcell.RuneHLine, nil, r.theme.Border)
	}
	for y := top + 1; y < bottom; y++ {
		s.SetContent(0, y, tcell.RuneVLine, nil, r.theme.Border)
		s.SetContent(right, y, tcell.RuneVLine, nil, r.theme.Border)
	}
	s.SetContent(0, top, tcell.RuneULCorner, nil, r.theme.Border)
	s.SetContent(right, top, tcell.RuneURCorner, nil, r.theme.Border)
	s.SetContent(0, bottom, tcell.RuneLLCorner, nil, r.theme.Border)
	s.SetContent(right, bottom, tcell.RuneLRCorner, nil, r.theme.Border)
}

// bannerFor returns the text shown over the middle of the board
func bannerFor(state *engine.GameState) string {
	switch {
	case state.GameOver && state.NewHighScore:
		return fmt.Sprintf("GAME OVER - NEW HIGH SCORE %d", state.Score)
	case state.GameOver:
		return fmt.Sprintf("GAME OVER - SCORE %d", state.Score)
	case state.Paused:
		return "PAUSED"
	case !state.Running:
		return "SNAKE"
	default:
		return ""
	}
}

// statusFor returns the key help for the current phase
func statusFor(state *engine.GameState) string {
	switch {
	case state.Running && state.Paused:
		return "Space resume  q menu"
	case state.Running:
		return "Arrows/WASD move  Space pause  m sound  q menu"
	default:
		return "Enter start  m sound  q quit"
	}
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for i, ch := range []rune(text) {
		s.SetContent(x+i, y, ch, nil, st)
	}
}

func drawCentered(s tcell.Screen, cx, cy int, text string, st tcell.Style) {
	drawText(s, cx-len([]rune(text))/2, cy, text, st)
}
