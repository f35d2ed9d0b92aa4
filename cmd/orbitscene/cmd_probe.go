package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/orbithub/orbitscene/internal/game"
	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print device signals and the quality tier they select",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, io.Discard)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			return printProbe(cmd.OutOrStdout(), env.signals, env.tier, jsonOut)
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func printProbe(w io.Writer, s game.Signals, tier game.Tier, jsonOut bool) error {
	if jsonOut {
		return json.NewEncoder(w).Encode(map[string]any{
			"goos":       s.GOOS,
			"user_agent": s.UserAgent,
			"cores":      s.LogicalCores,
			"memory":     s.MemoryBytes,
			"mobile":     s.Mobile(),
			"tier":       tier.String(),
		})
	}
	mem := "unknown"
	if s.MemoryBytes > 0 {
		mem = fmt.Sprintf("%.1f GiB", float64(s.MemoryBytes)/(1<<30))
	}
	_, err := fmt.Fprintf(w, "os:      %s\nmobile:  %t\ncores:   %d\nmemory:  %s\ntier:    %s\n",
		s.GOOS, s.Mobile(), s.LogicalCores, mem, tier)
	return err
}
