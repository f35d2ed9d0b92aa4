package game

import "github.com/orbithub/orbitscene/internal/config"

// Label is the screen placement of one body's name. Hidden labels keep their
// slot so callers can toggle visibility without reallocating.
type Label struct {
	ID      string
	Name    string
	X, Y    float64
	Visible bool
}

// LabelProjector projects body positions into screen space at a fixed
// cadence, less often on the Low tier, and hides everything during a warp.
type LabelProjector struct {
	labels   []Label
	interval int
	since    int
}

// NewLabelProjector preallocates one label per body.
func NewLabelProjector(bodies []CelestialBody, tier Tier, cfg config.LabelConfig) *LabelProjector {
	interval := cfg.HighInterval
	if tier == TierLow {
		interval = cfg.LowInterval
	}
	interval = max(interval, 1)

	p := &LabelProjector{
		labels:   make([]Label, len(bodies)),
		interval: interval,
		since:    interval,
	}
	for i, b := range bodies {
		p.labels[i] = Label{ID: b.ID, Name: b.Name}
	}
	return p
}

// Interval returns the number of frames between projections.
func (p *LabelProjector) Interval() int { return p.interval }

// Project recomputes every label from the camera for a w by h viewport.
func (p *LabelProjector) Project(cam Camera, bodies []CelestialBody, w, h float64) []Label {
	vp := cam.ViewProjection()
	for i := range p.labels {
		if i >= len(bodies) {
			p.labels[i].Visible = false
			continue
		}
		x, y, ok := ScreenPoint(vp, bodies[i].Pos, w, h)
		p.labels[i].X, p.labels[i].Y, p.labels[i].Visible = x, y, ok
	}
	p.since = 0
	return p.labels
}

// Update is called once per frame. It projects when the cadence is due and
// reports whether it did. While warping no projection runs and all labels are hidden.
func (p *LabelProjector) Update(cam Camera, bodies []CelestialBody, w, h float64, warping bool) ([]Label, bool) {
	if warping {
		for i := range p.labels {
			p.labels[i].Visible = false
		}
		p.since = p.interval
		return p.labels, false
	}
	p.since++
	if p.since < p.interval {
		return p.labels, false
	}
	return p.Project(cam, bodies, w, h), true
}

// Labels returns the most recent placements.
func (p *LabelProjector) Labels() []Label { return p.labels }
