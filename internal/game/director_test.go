package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = time.Second / 60

func newTestDirector(t *testing.T) *SceneDirector {
	t.Helper()
	cat, err := world.DefaultCatalog()
	require.NoError(t, err)
	d, err := NewSceneDirector(config.Default(), cat, TierHigh, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func runFor(d *SceneDirector, seconds float64) []BodySelected {
	var out []BodySelected
	for range int(seconds * 60) {
		out = append(out, d.Tick(tick).Selected...)
	}
	return out
}

func TestSceneDirector_WarpSelectsOnce(t *testing.T) {
	d := newTestDirector(t)

	var events []BodySelected
	d.Subscribe(func(ev BodySelected) { events = append(events, ev) })

	require.NoError(t, d.ActivateLabel("video"))
	f := d.Tick(tick)
	assert.True(t, f.Warping)
	assert.Empty(t, f.Selected)
	for _, l := range f.Labels {
		assert.False(t, l.Visible, "labels are hidden during warp")
	}

	selected := runFor(d, d.cfg.Camera.WarpDuration+1)
	require.Len(t, events, 1)
	assert.Equal(t, BodySelected{ID: "video", Warped: true}, events[0])
	assert.Equal(t, events, selected)
	assert.Equal(t, ModeOrbit, d.Rig.Mode())
	assert.False(t, d.Rig.Warping())
	assert.Equal(t, 1, d.Stats().Warps)
	assert.Equal(t, 1, d.Stats().Selections)
}

func TestSceneDirector_DirectoryActivationIsDirect(t *testing.T) {
	d := newTestDirector(t)
	d.SetMode(ModeDirectory)
	d.Tick(tick)
	require.Equal(t, ModeDirectory, d.Rig.Mode())

	require.NoError(t, d.ActivateLabel("tools"))
	f := d.Tick(tick)
	assert.Equal(t, []BodySelected{{ID: "tools"}}, f.Selected)
	assert.False(t, f.Warping)
	assert.Equal(t, 0, d.Stats().Warps)
}

func TestSceneDirector_UnknownLabel(t *testing.T) {
	d := newTestDirector(t)
	err := d.ActivateLabel("pluto")
	assert.ErrorIs(t, err, ErrUnknownBody)
}

func TestSceneDirector_HiddenDoesNothing(t *testing.T) {
	d := newTestDirector(t)
	d.Tick(tick)
	phase, _ := d.Orbit.Phase("mobile")
	cam := d.Rig.Camera()
	ticks := d.Ticks

	d.SetVisible(false)
	assert.Equal(t, d.cfg.Loop.PollInterval, d.NextInterval())
	for range 10 {
		f := d.Tick(tick)
		assert.True(t, f.Hidden)
	}
	after, _ := d.Orbit.Phase("mobile")
	assert.Equal(t, phase, after)
	assert.Equal(t, cam, d.Rig.Camera())
	assert.Equal(t, ticks, d.Ticks)

	d.SetVisible(true)
	assert.Equal(t, time.Second/60, d.NextInterval())
	d.Tick(tick)
	after, _ = d.Orbit.Phase("mobile")
	assert.NotEqual(t, phase, after)
}

func TestSceneDirector_PausedFreezesMotionOnly(t *testing.T) {
	d := newTestDirector(t)
	d.SetPaused(true)
	d.Tick(tick)
	phase, _ := d.Orbit.Phase("laptop")
	crafts := d.Combat.Crafts()
	cam := d.Rig.Camera()

	runFor(d, 1)
	after, _ := d.Orbit.Phase("laptop")
	assert.Equal(t, phase, after)
	assert.Equal(t, crafts, d.Combat.Crafts())
	assert.NotEqual(t, cam.Pos, d.Rig.Camera().Pos, "camera keeps orbiting")
}

func TestSceneDirector_ClickStartsWarp(t *testing.T) {
	d := newTestDirector(t)
	d.SetPaused(true)
	f := d.Tick(tick)

	var target Label
	for _, l := range f.Labels {
		if l.Visible {
			target = l
			break
		}
	}
	require.NotEmpty(t, target.ID)

	w, h := float64(d.cfg.Window.Width), float64(d.cfg.Window.Height)
	want, ok := Pick(f.Camera, target.X, target.Y, w, h, d.Orbit.Bodies(), d.cfg.Camera.PickScale)
	require.True(t, ok)

	d.Click(target.X, target.Y)
	d.Tick(tick)
	tr, ok := d.Rig.Transition()
	require.True(t, ok)
	assert.Equal(t, want, tr.Body)
}

func TestSceneDirector_ClickIgnoredInDirectory(t *testing.T) {
	d := newTestDirector(t)
	d.SetMode(ModeDirectory)
	d.Click(640, 360)
	d.Tick(tick)
	assert.False(t, d.Rig.Warping())
}

func TestSceneDirector_Autopilot(t *testing.T) {
	d := newTestDirector(t)
	d.SetMode(ModeFreeFly)
	d.Tick(tick)

	_, ok := d.Autopilot("what's the weather")
	assert.False(t, ok)

	id, ok := d.Autopilot("show me laptops")
	require.True(t, ok)
	assert.Equal(t, "laptop", id)

	d.Tick(tick)
	tr, warping := d.Rig.Transition()
	require.True(t, warping)
	assert.Equal(t, "laptop", tr.Body)
	assert.Equal(t, ModeOrbit, tr.Prev)

	selected := runFor(d, d.cfg.Camera.WarpDuration+1)
	assert.Equal(t, []BodySelected{{ID: "laptop", Warped: true}}, selected)
}

func TestSceneDirector_AutopilotDuringWarpIsIgnored(t *testing.T) {
	d := newTestDirector(t)
	d.SetMode(ModeFreeFly)
	d.Tick(tick)

	require.NoError(t, d.ActivateLabel("video"))
	d.Tick(tick)
	before, warping := d.Rig.Transition()
	require.True(t, warping)
	require.Equal(t, ModeFreeFly, before.Prev)

	_, ok := d.Autopilot("take me to the laptop hub")
	require.True(t, ok)
	d.Tick(tick)

	after, warping := d.Rig.Transition()
	require.True(t, warping)
	assert.Equal(t, "video", after.Body)
	assert.Equal(t, ModeFreeFly, after.Prev)

	selected := runFor(d, d.cfg.Camera.WarpDuration+1)
	assert.Equal(t, []BodySelected{{ID: "video", Warped: true}}, selected)
	assert.Equal(t, ModeFreeFly, d.Rig.Mode())
}

func TestSceneDirector_LogsKills(t *testing.T) {
	d := newTestDirector(t)
	victim := d.Combat.Crafts()[0]
	require.True(t, d.Combat.Damage(victim.Entity, 1000))

	last := d.Log.Recent(1)[0]
	assert.Equal(t, MsgCombat, last.Priority)
	assert.Contains(t, last.Text, "craft destroyed")
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return errors.New("boom")
}

func TestSceneDirector_Close(t *testing.T) {
	d := newTestDirector(t)
	res := &closeCounter{}
	d.Own(res)

	require.NoError(t, d.ActivateLabel("mobile"))
	d.Tick(tick)
	require.True(t, d.Rig.Warping())

	err := d.Close()
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, res.n)
	assert.False(t, d.Rig.Warping())

	assert.NoError(t, d.Close())
	assert.Equal(t, 1, res.n, "resources are released once")
	assert.True(t, d.Tick(tick).Hidden)
}

func TestSceneDirector_Run(t *testing.T) {
	d := newTestDirector(t)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	frames := 0
	err := d.Run(ctx, func(Frame) { frames++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, frames)
	assert.Equal(t, uint64(frames), d.Ticks)
}

func TestNewSceneDirector_RejectsBadCatalog(t *testing.T) {
	_, err := NewSceneDirector(config.Default(), nil, TierLow, zerolog.Nop())
	assert.ErrorIs(t, err, world.ErrEmptyCatalog)

	_, err = NewSceneDirector(config.Default(), &world.Catalog{}, TierLow, zerolog.Nop())
	assert.ErrorIs(t, err, world.ErrEmptyCatalog)
}

func TestNewSceneDirector_RejectsBadConfig(t *testing.T) {
	cat, err := world.DefaultCatalog()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Combat.StartHP = 0
	_, err = NewSceneDirector(cfg, cat, TierLow, zerolog.Nop())
	assert.ErrorContains(t, err, "startHP")

	cfg = config.Default()
	cfg.Loop.PollInterval = 0
	_, err = NewSceneDirector(cfg, cat, TierLow, zerolog.Nop())
	assert.ErrorContains(t, err, "pollInterval")
}
