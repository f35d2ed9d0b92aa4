package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/rs/zerolog"
)

// ErrUnknownBody is returned when a command names a body not in the registry.
var ErrUnknownBody = errors.New("unknown body")

// BodySelected is the one outbound event of the scene.
type BodySelected struct {
	ID     string
	Warped bool // false for a direct activation from the directory
}

// Frame is the result of one Tick.
type Frame struct {
	Hidden        bool
	Camera        Camera
	Labels        []Label
	LabelsUpdated bool
	Warping       bool
	WarpProgress  float64
	Selected      []BodySelected
}

// Stats summarizes a director's lifetime.
type Stats struct {
	Ticks      uint64
	Warps      int
	Selections int
	Kills      int
	Counts     map[Faction]int
}

// latch is input and host state written from any goroutine and consumed
// once per tick.
type latch struct {
	input       InputState
	mode        *CameraMode
	clicks      [][2]float64
	activations []string
	autopilot   []string
	visible     bool
	paused      bool
	width       float64
	height      float64
}

// SceneDirector owns the scene components and runs one tick per frame.
// Latch methods (SetVisible, SetPaused, SetViewport, SetMode, SetInput,
// AddLook, Click, ActivateLabel, Autopilot) are safe from any goroutine;
// everything else belongs to the goroutine calling Tick.
type SceneDirector struct {
	cfg     config.Config
	tier    Tier
	log     zerolog.Logger
	metrics *sceneMetrics

	Orbit  *OrbitField
	Combat *EntitySimulator
	Rig    *CameraRig
	Labels *LabelProjector
	Pilot  *Autopilot
	Log    *MessageLog
	Ticks  uint64

	mu    sync.Mutex
	latch latch

	view        CombatView
	clicks      [][2]float64
	activations []string
	requests    []string
	subscribers []func(BodySelected)
	resources   []io.Closer

	warps      int
	selections int
	closed     bool
}

// NewSceneDirector builds every scene component for the given tier. The
// scene starts visible, unpaused and in Orbit mode.
func NewSceneDirector(cfg config.Config, cat *world.Catalog, tier Tier, log zerolog.Logger) (*SceneDirector, error) {
	if cat == nil {
		return nil, world.ErrEmptyCatalog
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("scene catalog: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene config: %w", err)
	}
	m, err := newSceneMetrics()
	if err != nil {
		return nil, err
	}

	orbit := NewOrbitField(cat, cfg.Orbit, cfg.Seed, log.With().Str("component", "orbit").Logger())
	combat := NewEntitySimulator(cfg.Combat, tier, cfg.Seed, log.With().Str("component", "combat").Logger())
	combat.metrics = m
	rig := NewCameraRig(cfg.Camera, orbit, log.With().Str("component", "camera").Logger())

	d := &SceneDirector{
		cfg:     cfg,
		tier:    tier,
		log:     log.With().Str("component", "director").Logger(),
		metrics: m,
		Orbit:   orbit,
		Combat:  combat,
		Rig:     rig,
		Labels:  NewLabelProjector(orbit.Bodies(), tier, cfg.Labels),
		Pilot:   NewAutopilot(orbit.Bodies()),
		Log:     NewMessageLog(50),
		latch: latch{
			visible: true,
			width:   float64(cfg.Window.Width),
			height:  float64(cfg.Window.Height),
		},
	}
	rig.SetAspect(d.latch.width / d.latch.height)

	combat.OnDeath(func(c CraftInfo) {
		d.Log.Add(fmt.Sprintf("%s craft destroyed.", capitalize(c.Faction.String())), MsgCombat)
	})

	d.Log.Add(fmt.Sprintf("Navigation online. %d hubs in range.", len(orbit.Bodies())), MsgInfo)
	if tier == TierLow {
		d.Log.Add("Low power mode: reduced effects.", MsgWarning)
	}
	d.log.Info().
		Stringer("tier", tier).
		Int("bodies", len(orbit.Bodies())).
		Int("craft", 2*cfg.Combat.CraftPerFaction).
		Msg("scene ready")
	return d, nil
}

// Tier returns the quality tier the scene was built for.
func (d *SceneDirector) Tier() Tier { return d.tier }

// Subscribe registers fn for BodySelected events. Callbacks run on the tick goroutine.
func (d *SceneDirector) Subscribe(fn func(BodySelected)) {
	d.subscribers = append(d.subscribers, fn)
}

// Own hands a resource to the director; it is closed by Close.
func (d *SceneDirector) Own(c io.Closer) {
	d.resources = append(d.resources, c)
}

// SetVisible tells the scene whether it is on screen.
func (d *SceneDirector) SetVisible(visible bool) {
	d.mu.Lock()
	changed := d.latch.visible != visible
	d.latch.visible = visible
	d.mu.Unlock()
	if changed {
		d.log.Debug().Bool("visible", visible).Msg("visibility changed")
	}
}

// Visible reports the latched visibility flag.
func (d *SceneDirector) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latch.visible
}

// SetPaused freezes or resumes orbital and combat motion.
func (d *SceneDirector) SetPaused(paused bool) {
	d.mu.Lock()
	d.latch.paused = paused
	d.mu.Unlock()
}

// SetViewport sets the screen size used for labels and picking.
func (d *SceneDirector) SetViewport(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	d.mu.Lock()
	d.latch.width, d.latch.height = float64(w), float64(h)
	d.mu.Unlock()
}

// SetMode queues a navigation mode command.
func (d *SceneDirector) SetMode(m CameraMode) {
	d.mu.Lock()
	d.latch.mode = &m
	d.mu.Unlock()
}

// SetInput replaces the held direction flags and analog vectors. Look
// deltas already accumulated are kept.
func (d *SceneDirector) SetInput(in InputState) {
	d.mu.Lock()
	in.LookDX += d.latch.input.LookDX
	in.LookDY += d.latch.input.LookDY
	d.latch.input = in
	d.mu.Unlock()
}

// AddLook accumulates a look delta, for example a pointer drag.
func (d *SceneDirector) AddLook(dx, dy float64) {
	d.mu.Lock()
	d.latch.input.LookDX += dx
	d.latch.input.LookDY += dy
	d.mu.Unlock()
}

// Click queues a pointer click at screen coordinates for hit-testing.
func (d *SceneDirector) Click(x, y float64) {
	d.mu.Lock()
	d.latch.clicks = append(d.latch.clicks, [2]float64{x, y})
	d.mu.Unlock()
}

// ActivateLabel queues a label activation. In Directory mode it selects the
// body directly, otherwise it starts a warp.
func (d *SceneDirector) ActivateLabel(id string) error {
	if _, ok := d.Orbit.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	d.mu.Lock()
	d.latch.activations = append(d.latch.activations, id)
	d.mu.Unlock()
	return nil
}

// Autopilot resolves a free-text request to a body and queues a warp to it
// in Orbit mode. It returns the body id, or false when nothing matched.
func (d *SceneDirector) Autopilot(text string) (string, bool) {
	id, ok := d.Pilot.Resolve(text)
	if !ok {
		return "", false
	}
	d.mu.Lock()
	d.latch.autopilot = append(d.latch.autopilot, id)
	d.mu.Unlock()
	return id, true
}

// NextInterval is how long the host should wait before the next Tick: one
// frame while visible, the polling period while hidden.
func (d *SceneDirector) NextInterval() time.Duration {
	if !d.Visible() {
		return d.cfg.Loop.PollInterval
	}
	return time.Second / time.Duration(d.cfg.Loop.FrameRate)
}

// Tick runs one frame of wall time dt. While hidden nothing is simulated.
func (d *SceneDirector) Tick(dt time.Duration) Frame {
	d.mu.Lock()
	in := d.latch.input
	d.latch.input.LookDX, d.latch.input.LookDY = 0, 0
	mode := d.latch.mode
	d.latch.mode = nil
	d.clicks = append(d.clicks[:0], d.latch.clicks...)
	d.latch.clicks = d.latch.clicks[:0]
	d.activations = append(d.activations[:0], d.latch.activations...)
	d.latch.activations = d.latch.activations[:0]
	d.requests = append(d.requests[:0], d.latch.autopilot...)
	d.latch.autopilot = d.latch.autopilot[:0]
	visible, paused := d.latch.visible, d.latch.paused
	w, h := d.latch.width, d.latch.height
	d.mu.Unlock()

	if d.closed || !visible {
		return Frame{Hidden: true}
	}

	rate := float64(d.cfg.Loop.FrameRate)
	frames := dt.Seconds() * rate
	if d.cfg.Loop.MaxStep > 0 {
		frames = min(frames, d.cfg.Loop.MaxStep)
	}
	seconds := frames / rate

	d.Orbit.SetPaused(paused)
	if !paused {
		d.Orbit.Advance(frames)
		d.Combat.Advance(frames)
	}

	d.Rig.SetAspect(w / h)
	if mode != nil {
		d.Rig.SetMode(*mode)
	}

	var frame Frame
	d.applyCommands(&frame, w, h)

	if id, ok := d.Rig.Update(seconds, in); ok {
		d.warps++
		d.metrics.warpCompleted(id)
		d.emit(&frame, BodySelected{ID: id, Warped: true})
	}

	labels, fresh := d.Labels.Update(d.Rig.Camera(), d.Orbit.Bodies(), w, h, d.Rig.Warping())

	d.Ticks++
	d.metrics.tick()

	frame.Camera = d.Rig.Camera()
	frame.Labels = labels
	frame.LabelsUpdated = fresh
	if tr, ok := d.Rig.Transition(); ok {
		frame.Warping = true
		frame.WarpProgress = tr.Progress(d.Rig.Now())
	}
	return frame
}

func (d *SceneDirector) applyCommands(frame *Frame, w, h float64) {
	for _, id := range d.requests {
		// a running warp keeps its destination and the mode it restores
		if d.Rig.Warping() {
			continue
		}
		d.Rig.SetMode(ModeOrbit)
		if d.Rig.Select(id) {
			d.Log.Add(fmt.Sprintf("Autopilot engaged: %s.", d.bodyName(id)), MsgInfo)
		}
	}

	for _, id := range d.activations {
		if d.Rig.Mode() == ModeDirectory && !d.Rig.Warping() {
			d.emit(frame, BodySelected{ID: id})
			continue
		}
		d.Rig.Select(id)
	}

	if d.Rig.Mode() == ModeDirectory || d.Rig.Warping() {
		return
	}
	for _, c := range d.clicks {
		id, ok := Pick(d.Rig.Camera(), c[0], c[1], w, h, d.Orbit.Bodies(), d.cfg.Camera.PickScale)
		if ok && d.Rig.Select(id) {
			break
		}
	}
}

func (d *SceneDirector) emit(frame *Frame, ev BodySelected) {
	d.selections++
	d.metrics.bodySelected(ev.ID)
	if ev.Warped {
		d.Log.Add(fmt.Sprintf("Arrived at %s.", d.bodyName(ev.ID)), MsgSelect)
	} else {
		d.Log.Add(fmt.Sprintf("Opening %s.", d.bodyName(ev.ID)), MsgSelect)
	}
	d.log.Info().Str("body", ev.ID).Bool("warped", ev.Warped).Msg("body selected")

	frame.Selected = append(frame.Selected, ev)
	for _, fn := range d.subscribers {
		fn(ev)
	}
}

func (d *SceneDirector) bodyName(id string) string {
	if b, ok := d.Orbit.Body(id); ok {
		return b.Name
	}
	return id
}

// View fills v with the combat snapshot for drawing.
func (d *SceneDirector) View() *CombatView {
	d.Combat.View(&d.view)
	return &d.view
}

// Stats returns lifetime counters.
func (d *SceneDirector) Stats() Stats {
	return Stats{
		Ticks:      d.Ticks,
		Warps:      d.warps,
		Selections: d.selections,
		Kills:      d.Combat.Deaths(),
		Counts:     d.Combat.Counts(),
	}
}

// Run drives Tick from a timer until ctx is done, calling onFrame after
// every tick. Time spent hidden is not simulated.
func (d *SceneDirector) Run(ctx context.Context, onFrame func(Frame)) error {
	timer := time.NewTimer(d.NextInterval())
	defer timer.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-timer.C:
			f := d.Tick(now.Sub(last))
			last = now
			if onFrame != nil {
				onFrame(f)
			}
			timer.Reset(d.NextInterval())
		}
	}
}

// Close cancels any warp and releases owned resources. The director
// ignores further ticks.
func (d *SceneDirector) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.Rig.Cancel()
	d.subscribers = nil

	var errs []error
	for i := len(d.resources) - 1; i >= 0; i-- {
		if err := d.resources[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.resources = nil
	d.log.Debug().Msg("scene closed")
	return errors.Join(errs...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
