package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProbeJSON(t *testing.T) {
	out, err := execute(t, "probe", "--json", "--tier", "high")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "high", got["tier"])
	assert.NotEmpty(t, got["goos"])
}

func TestProbeText(t *testing.T) {
	out, err := execute(t, "probe", "--tier", "low")
	require.NoError(t, err)
	assert.Contains(t, out, "tier:    low")
}

func TestSimulateTicksWithSelection(t *testing.T) {
	out, err := execute(t, "simulate", "--ticks", "200", "--select", "mobile",
		"--tier", "low", "--log-level", "disabled")
	require.NoError(t, err)

	assert.Contains(t, out, "ticks:      200")
	assert.Contains(t, out, "bodies:     8")
	assert.Contains(t, out, "warps:      1")
	assert.Contains(t, out, "selections: 1")
}

func TestSimulateDirectoryActivation(t *testing.T) {
	out, err := execute(t, "simulate", "--ticks", "5", "--mode", "directory",
		"--select", "video", "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "warps:      0")
	assert.Contains(t, out, "selections: 1")
}

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := execute(t, "simulate", "--ticks", "1", "--mode", "sideways", "--log-level", "disabled")
	assert.ErrorContains(t, err, "unknown mode")

	_, err = execute(t, "simulate", "--ticks", "1", "--select", "nowhere", "--log-level", "disabled")
	assert.ErrorIs(t, err, game.ErrUnknownBody)

	_, err = execute(t, "probe", "--tier", "ultra")
	assert.Error(t, err)
}

func TestSimulateCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
star: {name: Core, radius: 5, color: "#ffffff"}
bodies:
  - {id: alpha, distance: 40, speed: 0.01, radius: 3, color: "#ff0000"}
  - {id: beta, distance: 70, speed: 0.005, radius: 4, color: "#00ff00"}
`), 0o644))

	out, err := execute(t, "simulate", "--ticks", "3", "--catalog", path, "--log-level", "disabled")
	require.NoError(t, err)
	assert.Contains(t, out, "bodies:     2")
}

func newTestTerminal(t *testing.T) (*terminalView, tcell.SimulationScreen, *game.SceneDirector) {
	t.Helper()
	cat, err := world.DefaultCatalog()
	require.NoError(t, err)
	d, err := game.NewSceneDirector(config.Default(), cat, game.TierLow, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(100, 30)
	return newTerminalView(screen, d, "Orbit Scene"), screen, d
}

func screenRow(s tcell.Screen, y int) string {
	cols, _ := s.Size()
	var sb strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := s.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestTerminalDrawsHUD(t *testing.T) {
	v, screen, _ := newTestTerminal(t)
	v.step(time.Second / 60)

	top := screenRow(screen, 0)
	assert.Contains(t, top, "Orbit Scene")
	assert.Contains(t, top, "[ ORBIT ]")
	assert.Contains(t, top, "low")
}

func TestTerminalSelectionOpensPanel(t *testing.T) {
	v, _, d := newTestTerminal(t)
	first := d.Orbit.Bodies()[0].ID

	assert.True(t, v.handle(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)))
	for i := 0; i < 240 && v.panel == nil; i++ {
		v.step(time.Second / 60)
	}
	require.NotNil(t, v.panel)
	assert.Equal(t, first, v.panel.ID)
	assert.False(t, d.Visible(), "scene hides behind the panel")

	v.handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	assert.Nil(t, v.panel)
	assert.True(t, d.Visible())
}

func TestTerminalModeKeysAndQuit(t *testing.T) {
	v, _, d := newTestTerminal(t)

	v.handle(tcell.NewEventKey(tcell.KeyRune, '3', tcell.ModNone))
	v.step(time.Second / 60)
	assert.Equal(t, game.ModeDirectory, d.Rig.Mode())

	v.step(time.Second / 60)
	assert.True(t, d.Orbit.Paused(), "directory mode pauses motion")

	assert.False(t, v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestTerminalClickOnlyOnPress(t *testing.T) {
	v, screen, d := newTestTerminal(t)
	// a large screen keeps every body several cells wide
	screen.SetSize(400, 200)
	v.resize()
	v.step(time.Second / 60)

	type cell struct{ x, y int }
	var targets []cell
	for _, l := range v.frame.Labels {
		if l.Visible {
			targets = append(targets, cell{int(l.X), int(l.Y / cellAspect)})
		}
	}
	require.NotEmpty(t, targets)

	// press on empty space, then drag across every body
	v.handle(tcell.NewEventMouse(0, 199, tcell.Button1, tcell.ModNone))
	for _, c := range targets {
		v.handle(tcell.NewEventMouse(c.x, c.y, tcell.Button1, tcell.ModNone))
	}
	v.step(time.Second / 60)
	assert.False(t, d.Rig.Warping(), "dragging over a body is not a click")

	v.handle(tcell.NewEventMouse(0, 199, tcell.ButtonNone, tcell.ModNone))
	for _, c := range targets {
		v.handle(tcell.NewEventMouse(c.x, c.y, tcell.Button1, tcell.ModNone))
		v.handle(tcell.NewEventMouse(c.x, c.y, tcell.ButtonNone, tcell.ModNone))
	}
	v.step(time.Second / 60)
	assert.True(t, d.Rig.Warping(), "a fresh press on a body starts a warp")
}
