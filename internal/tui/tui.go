// Package tui renders the four registers as an interactive grid. It is
// pure presentation glue: every key press calls into the register
// service and the grid re-reads display data from what it returns.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"clipboard-registers/internal/service"
)

type GridView struct {
	registers *service.RegisterService
	screen    tcell.Screen
	data      *service.DisplayData
	status    string
}

func NewGridView(registers *service.RegisterService) (*GridView, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	// Set default style
	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))

	return &GridView{
		registers: registers,
		screen:    screen,
	}, nil
}

func (g *GridView) Run(ctx context.Context) error {
	defer g.screen.Fini()

	if err := g.reload(ctx); err != nil {
		return err
	}

	for {
		g.draw()

		switch ev := g.screen.PollEvent().(type) {
		case *tcell.EventResize:
			g.screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyRune:
				switch r := ev.Rune(); r {
				case '1', '2', '3', '4':
					g.apply(ctx, g.registers.Switch, int(r-'0'))
				case 'c':
					g.apply(ctx, g.registers.Copy, g.activeID())
				case 'x':
					g.apply(ctx, g.registers.Clear, g.activeID())
				case 'r':
					if err := g.reload(ctx); err != nil {
						g.status = err.Error()
					}
				case 'q':
					return nil
				}
			}
		}
	}
}

func (g *GridView) activeID() int {
	if g.data == nil {
		return 1
	}
	return int(g.data.ActiveRegister)
}

// apply runs a mutating operation and refreshes the grid. Failures land
// in the status line instead of tearing the view down.
func (g *GridView) apply(ctx context.Context, op func(context.Context, int) (*service.Result, error), id int) {
	result, err := op(ctx, id)
	if err != nil {
		g.status = err.Error()
	} else if result != nil {
		g.status = fmt.Sprintf("%s: %s", result.Title, result.Message)
	}
	if err := g.reload(ctx); err != nil {
		g.status = err.Error()
	}
}

func (g *GridView) reload(ctx context.Context) error {
	data, err := g.registers.DisplayData(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registers: %w", err)
	}
	g.data = data
	return nil
}

func (g *GridView) draw() {
	g.screen.Clear()
	width, height := g.screen.Size()

	// Draw header
	headerStyle := tcell.StyleDefault.Reverse(true)
	drawStringCenter(g.screen, 0, " Clipboard Registers ", headerStyle)

	helpStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	help := "1-4:Switch  c:Copy active  x:Clear active  r:Refresh  Esc/q:Quit"
	drawStringCenter(g.screen, 1, help, helpStyle)

	drawString(g.screen, 0, 2, strings.Repeat("─", width), tcell.StyleDefault)

	if g.data != nil {
		now := time.Now()
		for i, register := range g.data.Registers {
			y := 3 + i*2
			style := tcell.StyleDefault
			marker := "  "
			if register.IsActive {
				style = style.Bold(true)
				marker = "● "
			}

			age := ""
			kind := "empty"
			if register.Metadata != nil {
				age = service.RelativeTime(register.Metadata.Timestamp, now)
				kind = string(register.Metadata.ContentType)
			}

			line := fmt.Sprintf(" %sRegister %d  %-6s  %s",
				marker, register.ID, kind, service.ContentPreview(register.Metadata))
			if width > 17 {
				line = service.TruncateText(line, width-14)
			}
			drawString(g.screen, 0, y, line, style)
			if age != "" {
				drawString(g.screen, width-len(age)-1, y, age, tcell.StyleDefault.Dim(true))
			}
		}
	}

	// Draw status line
	if g.status != "" {
		status := g.status
		if runes := []rune(status); len(runes) > width {
			status = string(runes[:width])
		}
		drawString(g.screen, 0, height-1, status, tcell.StyleDefault.Reverse(true))
	}

	g.screen.Show()
}

func drawString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	col := x
	for _, r := range str {
		s.SetContent(col, y, r, nil, style)
		col++
	}
}

func drawStringCenter(s tcell.Screen, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	x := (w - utf8.RuneCountInString(str)) / 2
	if x < 0 {
		x = 0
	}
	drawString(s, x, y, str, style)
}
