// Package config loads orbitscene settings from an optional YAML file,
// ORBITSCENE_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	fileName  = "orbitscene"
	envPrefix = "ORBITSCENE"
)

// Config is the full application configuration.
type Config struct {
	LogLevel  string `mapstructure:"logLevel"`
	LogFormat string `mapstructure:"logFormat"` // console or json
	Catalog   string `mapstructure:"catalog"`   // YAML catalog path, empty uses the embedded one
	Tier      string `mapstructure:"tier"`      // auto, low or high
	UserAgent string `mapstructure:"userAgent"` // optional mobility hint for the capability probe
	Seed      int64  `mapstructure:"seed"`

	Window WindowConfig `mapstructure:"window"`
	Loop   LoopConfig   `mapstructure:"loop"`
	Orbit  OrbitConfig  `mapstructure:"orbit"`
	Combat CombatConfig `mapstructure:"combat"`
	Camera CameraConfig `mapstructure:"camera"`
	Labels LabelConfig  `mapstructure:"labels"`
}

// WindowConfig sizes the ebiten window.
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// LoopConfig drives the tick loop.
type LoopConfig struct {
	FrameRate    int           `mapstructure:"frameRate"`    // ticks per second while visible
	PollInterval time.Duration `mapstructure:"pollInterval"` // visibility check period while hidden
	MaxStep      float64       `mapstructure:"maxStep"`      // cap on frames advanced in one tick
}

// OrbitConfig tunes body motion.
type OrbitConfig struct {
	TimeScale    float64 `mapstructure:"timeScale"`
	BobAmplitude float64 `mapstructure:"bobAmplitude"`
	BobFrequency float64 `mapstructure:"bobFrequency"`
	Scatter      bool    `mapstructure:"scatter"` // randomize starting phases from the seed
}

// CombatConfig holds the craft simulation balancing values. Times are in frames.
type CombatConfig struct {
	CraftPerFaction int     `mapstructure:"craftPerFaction"`
	StartHP         int     `mapstructure:"startHP"`
	RingRadius      float64 `mapstructure:"ringRadius"`
	RingJitter      float64 `mapstructure:"ringJitter"`
	RingHeight      float64 `mapstructure:"ringHeight"`
	CraftSpeed      float64 `mapstructure:"craftSpeed"` // radians per frame around the origin
	CraftBob        float64 `mapstructure:"craftBob"`

	CooldownMin     float64 `mapstructure:"cooldownMin"`
	CooldownMax     float64 `mapstructure:"cooldownMax"`
	EngageRange     float64 `mapstructure:"engageRange"`
	NearThreshold   float64 `mapstructure:"nearThreshold"`
	HomingChance    float64 `mapstructure:"homingChance"`
	BeamDamage      int     `mapstructure:"beamDamage"`
	BallisticDamage int     `mapstructure:"ballisticDamage"`
	HomingDamage    int     `mapstructure:"homingDamage"`
	BeamDuration    float64 `mapstructure:"beamDuration"`
	BallisticSpeed  float64 `mapstructure:"ballisticSpeed"`
	HomingSpeed     float64 `mapstructure:"homingSpeed"`
	HomingTurn      float64 `mapstructure:"homingTurn"` // max steering blend per frame
	HomingLife      float64 `mapstructure:"homingLife"`
	HomingHitRadius float64 `mapstructure:"homingHitRadius"`
	TrailInterval   float64 `mapstructure:"trailInterval"`
	TrailLife       float64 `mapstructure:"trailLife"`
	ExplosionMaxAge float64 `mapstructure:"explosionMaxAge"`
	DebrisHigh      int     `mapstructure:"debrisHigh"`
	DebrisLow       int     `mapstructure:"debrisLow"`
	DebrisSpeed     float64 `mapstructure:"debrisSpeed"`
	DebrisLifeMin   float64 `mapstructure:"debrisLifeMin"`
	DebrisLifeMax   float64 `mapstructure:"debrisLifeMax"`
	RespawnDelay    float64 `mapstructure:"respawnDelay"`
}

// CameraConfig tunes the navigation modes and the warp.
type CameraConfig struct {
	FOV           float64 `mapstructure:"fov"` // degrees
	Near          float64 `mapstructure:"near"`
	Far           float64 `mapstructure:"far"`
	OrbitRadius   float64 `mapstructure:"orbitRadius"`
	OrbitHeight   float64 `mapstructure:"orbitHeight"`
	OrbitRate     float64 `mapstructure:"orbitRate"`     // radians per second
	DirectoryRate float64 `mapstructure:"directoryRate"` // radians per second
	LookSpeed     float64 `mapstructure:"lookSpeed"`     // look momentum added per look-delta unit, radians per second
	LookDecay     float64 `mapstructure:"lookDecay"`     // fraction of look momentum kept per second
	MoveSpeed     float64 `mapstructure:"moveSpeed"`     // units per second
	WarpDuration  float64 `mapstructure:"warpDuration"`  // seconds
	Standoff      float64 `mapstructure:"standoff"`
	FOVBump       float64 `mapstructure:"fovBump"` // degrees added at the warp midpoint
	PickScale     float64 `mapstructure:"pickScale"`
}

// LabelConfig sets how often labels are reprojected, in frames.
type LabelConfig struct {
	HighInterval int `mapstructure:"highInterval"`
	LowInterval  int `mapstructure:"lowInterval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Tier:      "auto",
		Seed:      1,
		Window:    WindowConfig{Width: 1280, Height: 720, Title: "Orbit Scene"},
		Loop:      LoopConfig{FrameRate: 60, PollInterval: 500 * time.Millisecond, MaxStep: 4},
		Orbit:     OrbitConfig{TimeScale: 1, BobAmplitude: 0.3, BobFrequency: 3, Scatter: true},
		Combat: CombatConfig{
			CraftPerFaction: 4,
			StartHP:         100,
			RingRadius:      150,
			RingJitter:      20,
			RingHeight:      18,
			CraftSpeed:      0.002,
			CraftBob:        0.6,
			CooldownMin:     40,
			CooldownMax:     100,
			EngageRange:     220,
			NearThreshold:   60,
			HomingChance:    0.3,
			BeamDamage:      10,
			BallisticDamage: 15,
			HomingDamage:    25,
			BeamDuration:    6,
			BallisticSpeed:  6,
			HomingSpeed:     3,
			HomingTurn:      0.08,
			HomingLife:      180,
			HomingHitRadius: 3,
			TrailInterval:   3,
			TrailLife:       20,
			ExplosionMaxAge: 45,
			DebrisHigh:      16,
			DebrisLow:       5,
			DebrisSpeed:     0.8,
			DebrisLifeMin:   40,
			DebrisLifeMax:   90,
			RespawnDelay:    180,
		},
		Camera: CameraConfig{
			FOV:           60,
			Near:          0.1,
			Far:           2000,
			OrbitRadius:   180,
			OrbitHeight:   70,
			OrbitRate:     0.05,
			DirectoryRate: 0.02,
			LookSpeed:     0.02,
			LookDecay:     0.002,
			MoveSpeed:     60,
			WarpDuration:  2.5,
			Standoff:      15,
			FOVBump:       25,
			PickScale:     1.5,
		},
		Labels: LabelConfig{HighInterval: 2, LowInterval: 6},
	}
}

// Load builds a Config from defaults, an optional config file and the
// environment. path may be a directory holding orbitscene.yaml, a file path,
// or empty to skip the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			v.SetConfigName(fileName)
			v.SetConfigType("yaml")
			v.AddConfigPath(path)
		case err == nil:
			v.SetConfigFile(path)
		default:
			return Config{}, fmt.Errorf("config path %s: %w", path, err)
		}

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that would break the simulation.
func (c Config) Validate() error {
	switch c.Tier {
	case "auto", "low", "high":
	default:
		return fmt.Errorf("tier %q: want auto, low or high", c.Tier)
	}
	if c.Loop.FrameRate <= 0 {
		return fmt.Errorf("loop.frameRate must be positive, got %d", c.Loop.FrameRate)
	}
	if c.Loop.PollInterval <= 0 {
		return fmt.Errorf("loop.pollInterval must be positive, got %v", c.Loop.PollInterval)
	}
	if c.Loop.MaxStep < 0 {
		return fmt.Errorf("loop.maxStep must not be negative, got %v", c.Loop.MaxStep)
	}
	if c.Combat.StartHP <= 0 {
		return fmt.Errorf("combat.startHP must be positive, got %d", c.Combat.StartHP)
	}
	if c.Camera.WarpDuration <= 0 {
		return fmt.Errorf("camera.warpDuration must be positive, got %v", c.Camera.WarpDuration)
	}
	if c.Combat.CooldownMax < c.Combat.CooldownMin {
		return fmt.Errorf("combat.cooldownMax (%v) < combat.cooldownMin (%v)", c.Combat.CooldownMax, c.Combat.CooldownMin)
	}
	if c.Labels.HighInterval <= 0 || c.Labels.LowInterval <= 0 {
		return errors.New("labels intervals must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("logFormat", d.LogFormat)
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("tier", d.Tier)
	v.SetDefault("userAgent", d.UserAgent)
	v.SetDefault("seed", d.Seed)

	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("window.title", d.Window.Title)

	v.SetDefault("loop.frameRate", d.Loop.FrameRate)
	v.SetDefault("loop.pollInterval", d.Loop.PollInterval)
	v.SetDefault("loop.maxStep", d.Loop.MaxStep)

	v.SetDefault("orbit.timeScale", d.Orbit.TimeScale)
	v.SetDefault("orbit.bobAmplitude", d.Orbit.BobAmplitude)
	v.SetDefault("orbit.bobFrequency", d.Orbit.BobFrequency)
	v.SetDefault("orbit.scatter", d.Orbit.Scatter)

	c := d.Combat
	v.SetDefault("combat.craftPerFaction", c.CraftPerFaction)
	v.SetDefault("combat.startHP", c.StartHP)
	v.SetDefault("combat.ringRadius", c.RingRadius)
	v.SetDefault("combat.ringJitter", c.RingJitter)
	v.SetDefault("combat.ringHeight", c.RingHeight)
	v.SetDefault("combat.craftSpeed", c.CraftSpeed)
	v.SetDefault("combat.craftBob", c.CraftBob)
	v.SetDefault("combat.cooldownMin", c.CooldownMin)
	v.SetDefault("combat.cooldownMax", c.CooldownMax)
	v.SetDefault("combat.engageRange", c.EngageRange)
	v.SetDefault("combat.nearThreshold", c.NearThreshold)
	v.SetDefault("combat.homingChance", c.HomingChance)
	v.SetDefault("combat.beamDamage", c.BeamDamage)
	v.SetDefault("combat.ballisticDamage", c.BallisticDamage)
	v.SetDefault("combat.homingDamage", c.HomingDamage)
	v.SetDefault("combat.beamDuration", c.BeamDuration)
	v.SetDefault("combat.ballisticSpeed", c.BallisticSpeed)
	v.SetDefault("combat.homingSpeed", c.HomingSpeed)
	v.SetDefault("combat.homingTurn", c.HomingTurn)
	v.SetDefault("combat.homingLife", c.HomingLife)
	v.SetDefault("combat.homingHitRadius", c.HomingHitRadius)
	v.SetDefault("combat.trailInterval", c.TrailInterval)
	v.SetDefault("combat.trailLife", c.TrailLife)
	v.SetDefault("combat.explosionMaxAge", c.ExplosionMaxAge)
	v.SetDefault("combat.debrisHigh", c.DebrisHigh)
	v.SetDefault("combat.debrisLow", c.DebrisLow)
	v.SetDefault("combat.debrisSpeed", c.DebrisSpeed)
	v.SetDefault("combat.debrisLifeMin", c.DebrisLifeMin)
	v.SetDefault("combat.debrisLifeMax", c.DebrisLifeMax)
	v.SetDefault("combat.respawnDelay", c.RespawnDelay)

	cam := d.Camera
	v.SetDefault("camera.fov", cam.FOV)
	v.SetDefault("camera.near", cam.Near)
	v.SetDefault("camera.far", cam.Far)
	v.SetDefault("camera.orbitRadius", cam.OrbitRadius)
	v.SetDefault("camera.orbitHeight", cam.OrbitHeight)
	v.SetDefault("camera.orbitRate", cam.OrbitRate)
	v.SetDefault("camera.directoryRate", cam.DirectoryRate)
	v.SetDefault("camera.lookSpeed", cam.LookSpeed)
	v.SetDefault("camera.lookDecay", cam.LookDecay)
	v.SetDefault("camera.moveSpeed", cam.MoveSpeed)
	v.SetDefault("camera.warpDuration", cam.WarpDuration)
	v.SetDefault("camera.standoff", cam.Standoff)
	v.SetDefault("camera.fovBump", cam.FOVBump)
	v.SetDefault("camera.pickScale", cam.PickScale)

	v.SetDefault("labels.highInterval", d.Labels.HighInterval)
	v.SetDefault("labels.lowInterval", d.Labels.LowInterval)
}
