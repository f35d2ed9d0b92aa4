package main

import (
	"context"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/render"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/spf13/cobra"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2

func newTerminalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terminal",
		Short: "Render the scene as text in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs would tear the screen; only errors reach stderr once it is restored.
			env, err := loadEnv(cmd, io.Discard)
			if err != nil {
				return err
			}
			d, err := env.newDirector()
			if err != nil {
				return err
			}
			defer d.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()
			screen.EnableMouse()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return newTerminalView(screen, d, env.cfg.Window.Title).run(ctx)
		},
	}
}

// terminalView draws the scene into a tcell screen. Events arrive on a
// polling goroutine; ticks and drawing happen on the run loop.
type terminalView struct {
	screen tcell.Screen
	d      *game.SceneDirector
	title  string

	scene   *render.CellBuffer
	hud     *render.CellBuffer
	frame   game.Frame
	panel   *world.BodyDef
	next    int              // catalog index cycled by Tab
	buttons tcell.ButtonMask // held on the previous mouse event
}

func newTerminalView(screen tcell.Screen, d *game.SceneDirector, title string) *terminalView {
	v := &terminalView{
		screen: screen,
		d:      d,
		title:  title,
		scene:  render.NewCellBuffer(0, 0),
		hud:    render.NewCellBuffer(0, 0),
	}
	v.resize()
	return v
}

func (v *terminalView) resize() {
	cols, rows := v.screen.Size()
	v.scene.Resize(cols, rows)
	v.hud.Resize(cols, rows)
	v.d.SetViewport(cols, rows*cellAspect)
}

func (v *terminalView) run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	timer := time.NewTimer(v.d.NextInterval())
	defer timer.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handle(ev) {
				return nil
			}
		case now := <-timer.C:
			v.step(now.Sub(last))
			last = now
			timer.Reset(v.d.NextInterval())
		}
	}
}

// handle applies one input event. It returns false when the user quits.
func (v *terminalView) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		// drag motion repeats the held button, only the press edge clicks
		pressed := ev.Buttons()&tcell.Button1 != 0 && v.buttons&tcell.Button1 == 0
		v.buttons = ev.Buttons()
		if pressed && v.panel == nil {
			x, y := ev.Position()
			v.d.Click(float64(x)+0.5, (float64(y)+0.5)*cellAspect)
		}
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

func (v *terminalView) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		if v.panel != nil {
			v.panel = nil
			v.d.SetVisible(true)
		}
		return true
	case tcell.KeyTab:
		bodies := v.d.Orbit.Bodies()
		if len(bodies) > 0 {
			id := bodies[v.next%len(bodies)].ID
			v.next++
			_ = v.d.ActivateLabel(id)
		}
		return true
	case tcell.KeyLeft:
		v.d.AddLook(-8, 0)
	case tcell.KeyRight:
		v.d.AddLook(8, 0)
	case tcell.KeyUp:
		v.d.AddLook(0, -8)
	case tcell.KeyDown:
		v.d.AddLook(0, 8)
	case tcell.KeyRune:
		var in game.InputState
		switch ev.Rune() {
		case 'q':
			if v.d.Rig.Mode() != game.ModeFreeFly {
				return false
			}
			in.Down = true
		case '1':
			v.d.SetMode(game.ModeOrbit)
		case '2':
			v.d.SetMode(game.ModeFreeFly)
		case '3':
			v.d.SetMode(game.ModeDirectory)
		case 'w':
			in.Forward = true
		case 's':
			in.Back = true
		case 'a':
			in.Left = true
		case 'd':
			in.Right = true
		case 'e':
			in.Up = true
		}
		// terminals send no key-up, so a key press moves for one tick
		v.d.SetInput(in)
	}
	return true
}

// step ticks the director and redraws.
func (v *terminalView) step(dt time.Duration) {
	v.d.SetPaused(v.d.Rig.Mode() == game.ModeDirectory)
	f := v.d.Tick(dt)
	v.d.SetInput(game.InputState{})
	if !f.Hidden {
		v.frame = f
		for _, ev := range f.Selected {
			if b, ok := v.d.Orbit.Body(ev.ID); ok {
				def := b.BodyDef
				v.panel = &def
				v.d.SetVisible(false)
			}
		}
	}
	v.draw(f.Hidden)
}

func (v *terminalView) draw(hidden bool) {
	cols, rows := v.screen.Size()
	v.scene.Resize(cols, rows)
	if !hidden && v.panel == nil {
		render.PlotScene(v.scene, render.CellScene{
			Camera: v.frame.Camera,
			Width:  float64(cols),
			Height: float64(rows * cellAspect),
			Tier:   v.d.Tier(),
			Star:   v.d.Orbit.Star(),
			Bodies: v.d.Orbit.Bodies(),
			Combat: v.d.View(),
			Labels: v.frame.Labels,
		})
	}
	render.ComposeHUD(v.hud, render.HUDState{
		Title:        v.title,
		Mode:         v.d.Rig.Mode(),
		Tier:         v.d.Tier(),
		Paused:       v.d.Orbit.Paused(),
		Warping:      v.frame.Warping && v.panel == nil,
		WarpProgress: v.frame.WarpProgress,
		Stats:        v.d.Stats(),
		Messages:     v.d.Log.Recent(4),
		Panel:        v.panel,
	})
	v.scene.Overlay(v.hud)

	for y := 0; y < v.scene.Rows; y++ {
		for x := 0; x < v.scene.Cols; x++ {
			c := v.scene.Get(x, y)
			v.screen.SetContent(x, y, render.GlyphRune(c.Glyph), nil, cellStyle(c))
		}
	}
	v.screen.Show()
}

func cellStyle(c render.Cell) tcell.Style {
	fg := render.Palette[c.FG&15]
	bg := render.Palette[c.BG&15]
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
		Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
}
