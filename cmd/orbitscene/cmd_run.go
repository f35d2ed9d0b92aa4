package main

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/render"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	cellWidth  = 16
	cellHeight = 16

	// dragThreshold separates a click from the start of a look drag, in pixels.
	dragThreshold = 4
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the scene in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			d, err := env.newDirector()
			if err != nil {
				return err
			}
			g := newSceneGame(env, d)
			defer g.Close()

			ebiten.SetWindowSize(env.cfg.Window.Width, env.cfg.Window.Height)
			ebiten.SetWindowTitle(env.cfg.Window.Title)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetTPS(env.cfg.Loop.FrameRate)

			if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
				return err
			}
			return nil
		},
	}
}

// sceneGame is the ebiten host. It owns input and drawing; all scene state
// lives in the director.
type sceneGame struct {
	d    *game.SceneDirector
	log  zerolog.Logger
	cfg  hostConfig
	tier game.Tier

	scene *render.SceneRenderer
	grid  *render.GridRenderer
	hud   *render.CellBuffer
	frame game.Frame

	width, height int
	panel         *world.BodyDef
	hidden        bool
	last          time.Time

	pressX, pressY int
	prevX, prevY   int
	dragging       bool
}

type hostConfig struct {
	title     string
	frameRate int
	pollRate  int
}

func newSceneGame(env *sceneEnv, d *game.SceneDirector) *sceneGame {
	atlas := render.NewFontAtlas()
	grid := render.NewGridRenderer(atlas, cellWidth, cellHeight)
	assets := render.NewAssets(d.Orbit.Star(), d.Orbit.Bodies(), env.tier, env.cfg.Seed)
	d.Own(atlas)
	d.Own(grid)
	d.Own(assets)

	poll := max(int(time.Second/env.cfg.Loop.PollInterval), 1)
	return &sceneGame{
		d:    d,
		log:  env.log,
		tier: env.tier,
		cfg: hostConfig{
			title:     env.cfg.Window.Title,
			frameRate: env.cfg.Loop.FrameRate,
			pollRate:  poll,
		},
		scene:  render.NewSceneRenderer(assets, grid, env.tier),
		grid:   grid,
		hud:    render.NewCellBuffer(env.cfg.Window.Width/cellWidth, env.cfg.Window.Height/cellHeight),
		width:  env.cfg.Window.Width,
		height: env.cfg.Window.Height,
		last:   time.Now(),
	}
}

// Close releases the director and every GPU resource it owns.
func (g *sceneGame) Close() error {
	return g.d.Close()
}

func (g *sceneGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.panel != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			g.panel = nil
		}
	}
	g.setHidden(g.panel != nil)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.d.SetMode(game.ModeOrbit)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.d.SetMode(game.ModeFreeFly)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		g.d.SetMode(game.ModeDirectory)
	}
	g.d.SetPaused(g.d.Rig.Mode() == game.ModeDirectory)
	g.latchInput()

	now := time.Now()
	f := g.d.Tick(now.Sub(g.last))
	g.last = now
	if f.Hidden {
		return nil
	}
	g.frame = f
	for _, ev := range f.Selected {
		if b, ok := g.d.Orbit.Body(ev.ID); ok {
			def := b.BodyDef
			g.panel = &def
			g.log.Debug().Str("body", def.ID).Msg("panel opened")
		}
	}
	return nil
}

// setHidden couples panel visibility to the scene: while a body's panel
// covers the screen the director only polls.
func (g *sceneGame) setHidden(hidden bool) {
	if hidden == g.hidden {
		return
	}
	g.hidden = hidden
	g.d.SetVisible(!hidden)
	if hidden {
		ebiten.SetTPS(g.cfg.pollRate)
	} else {
		ebiten.SetTPS(g.cfg.frameRate)
	}
}

func (g *sceneGame) latchInput() {
	in := game.InputState{
		Forward: ebiten.IsKeyPressed(ebiten.KeyW),
		Back:    ebiten.IsKeyPressed(ebiten.KeyS),
		Left:    ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyD),
		Up:      ebiten.IsKeyPressed(ebiten.KeyE) || ebiten.IsKeyPressed(ebiten.KeySpace),
		Down:    ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyShift),
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.LookX--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.LookX++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.LookY--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.LookY++
	}
	g.d.SetInput(in)

	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pressX, g.pressY = x, y
		g.dragging = false
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if !g.dragging && abs(x-g.pressX)+abs(y-g.pressY) > dragThreshold {
			g.dragging = true
		}
		if g.dragging {
			g.d.AddLook(float64(x-g.prevX), float64(y-g.prevY))
		}
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if !g.dragging {
			g.d.Click(float64(x), float64(y))
		}
		g.dragging = false
	}
	g.prevX, g.prevY = x, y
}

func (g *sceneGame) Draw(screen *ebiten.Image) {
	if !g.hidden {
		g.scene.Draw(screen, render.SceneInput{
			Frame:  g.frame,
			Star:   g.d.Orbit.Star(),
			Bodies: g.d.Orbit.Bodies(),
			Combat: g.d.View(),
			Width:  float64(g.width),
			Height: float64(g.height),
		})
	}
	render.ComposeHUD(g.hud, render.HUDState{
		Title:        g.cfg.title,
		Mode:         g.d.Rig.Mode(),
		Tier:         g.tier,
		Paused:       g.d.Orbit.Paused(),
		Warping:      g.frame.Warping && !g.hidden,
		WarpProgress: g.frame.WarpProgress,
		Stats:        g.d.Stats(),
		Messages:     g.d.Log.Recent(6),
		Panel:        g.panel,
	})
	g.grid.Draw(screen, g.hud)
}

func (g *sceneGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.d.SetViewport(outsideWidth, outsideHeight)
		g.hud.Resize(outsideWidth/cellWidth, outsideHeight/cellHeight)
	}
	return outsideWidth, outsideHeight
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
