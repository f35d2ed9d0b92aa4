package main

import (
	"fmt"
	"io"
	"os"

	"github.com/orbithub/orbitscene/internal/config"
	"github.com/orbithub/orbitscene/internal/game"
	"github.com/orbithub/orbitscene/internal/logging"
	"github.com/orbithub/orbitscene/internal/world"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orbitscene",
		Short: "Navigable 3D orbit map of hubs with an autonomous space battle",
		Long: `orbitscene renders hubs orbiting a central star. Fly between them in
orbit, free-fly or directory mode; selecting a hub warps the camera to it.
Friendly and hostile craft fight in the background on their own.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file or directory holding orbitscene.yaml")
	rootCmd.PersistentFlags().String("log-level", "", "Override log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("tier", "", "Override quality tier (auto, low, high)")
	rootCmd.PersistentFlags().String("catalog", "", "Body catalog YAML (default: built-in)")

	rootCmd.AddCommand(
		newRunCmd(),
		newSimulateCmd(),
		newProbeCmd(),
		newTerminalCmd(),
	)
	return rootCmd
}

// sceneEnv is everything a subcommand needs to build a scene.
type sceneEnv struct {
	cfg     config.Config
	log     zerolog.Logger
	catalog *world.Catalog
	signals game.Signals
	tier    game.Tier
}

// loadEnv resolves config, logger, catalog and tier from the persistent
// flags. Logs go to logOut so terminal views can keep stderr clean.
func loadEnv(cmd *cobra.Command, logOut io.Writer) (*sceneEnv, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if tier, _ := cmd.Flags().GetString("tier"); tier != "" {
		cfg.Tier = tier
	}
	if cat, _ := cmd.Flags().GetString("catalog"); cat != "" {
		cfg.Catalog = cat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)

	var catalog *world.Catalog
	if cfg.Catalog != "" {
		catalog, err = world.LoadCatalog(cfg.Catalog)
	} else {
		catalog, err = world.DefaultCatalog()
	}
	if err != nil {
		return nil, err
	}

	signals := game.Probe(cfg.UserAgent)
	tier, err := game.ResolveTier(cfg.Tier, signals)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("goos", signals.GOOS).
		Int("cores", signals.LogicalCores).
		Uint64("memory", signals.MemoryBytes).
		Stringer("tier", tier).
		Msg("capability probe")

	return &sceneEnv{cfg: cfg, log: log, catalog: catalog, signals: signals, tier: tier}, nil
}

// newDirector builds the scene for env.
func (e *sceneEnv) newDirector() (*game.SceneDirector, error) {
	return game.NewSceneDirector(e.cfg, e.catalog, e.tier, logging.Component(e.log, "scene"))
}
