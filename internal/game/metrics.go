package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/orbithub/orbitscene/internal/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// sceneMetrics holds the scene counters. Instruments come from the global
// provider, which is a no-op unless the host installs one.
type sceneMetrics struct {
	ticks     metric.Int64Counter
	warps     metric.Int64Counter
	selected  metric.Int64Counter
	shots     metric.Int64Counter
	destroyed metric.Int64Counter
}

func newSceneMetrics() (*sceneMetrics, error) {
	m := meter()
	sm := &sceneMetrics{}

	var err error
	sm.ticks, err = m.Int64Counter(
		"scene.ticks",
		metric.WithDescription("Scene ticks executed while visible"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	sm.warps, err = m.Int64Counter(
		"scene.warps.completed",
		metric.WithDescription("Warp transitions that reached their destination"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating warps counter: %w", err)
	}

	sm.selected, err = m.Int64Counter(
		"scene.bodies.selected",
		metric.WithDescription("Body selected events emitted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating selected counter: %w", err)
	}

	sm.shots, err = m.Int64Counter(
		"combat.shots",
		metric.WithDescription("Shots fired by autonomous craft"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating shots counter: %w", err)
	}

	sm.destroyed, err = m.Int64Counter(
		"combat.craft.destroyed",
		metric.WithDescription("Craft destroyed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating destroyed counter: %w", err)
	}

	return sm, nil
}

func (m *sceneMetrics) tick() {
	if m == nil {
		return
	}
	m.ticks.Add(context.Background(), 1)
}

func (m *sceneMetrics) warpCompleted(body string) {
	if m == nil {
		return
	}
	m.warps.Add(context.Background(), 1, metric.WithAttributes(attribute.String("body", body)))
}

func (m *sceneMetrics) bodySelected(body string) {
	if m == nil {
		return
	}
	m.selected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("body", body)))
}

func (m *sceneMetrics) shot(kind ProjectileKind) {
	if m == nil {
		return
	}
	m.shots.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind.String())))
}

func (m *sceneMetrics) craftDestroyed(f Faction) {
	if m == nil {
		return
	}
	m.destroyed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("faction", f.String())))
}
