package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// options are the flags shared by every subcommand.
type options struct {
	dataDir    string
	configDir  string
	worldID    string
	tuningPath string
	seed       int64
	height     int
	boundaryR  int

	startYear    int
	hourDuration time.Duration
}

func (o *options) worldDir() string { return filepath.Join(o.dataDir, "worlds", o.worldID) }

func (o *options) tuningFile() string {
	if p := strings.TrimSpace(o.tuningPath); p != "" {
		return p
	}
	return filepath.Join(o.configDir, "tuning.yaml")
}

// NewRootCmd creates the root command for the quakecraft CLI.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "quakecraft",
		Short: "Scheduled earthquakes for a voxel world",
		Long: `quakecraft runs a voxel world whose calendar carries a yearly
earthquake schedule: warnings, foreshocks and main shocks that carve the terrain.`,
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.dataDir, "data", "./data", "runtime data directory")
	f.StringVar(&opts.configDir, "configs", "./configs", "config directory (catalogs, tuning.yaml)")
	f.StringVar(&opts.worldID, "world", "world_1", "world id")
	f.StringVar(&opts.tuningPath, "tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
	f.Int64Var(&opts.seed, "seed", 1337, "terrain seed")
	f.IntVar(&opts.height, "height", 256, "world height in blocks")
	f.IntVar(&opts.boundaryR, "boundary", 0, "world half-width in blocks (0 = unbounded)")
	f.IntVar(&opts.startYear, "start-year", 1, "calendar year of a fresh world")
	f.DurationVar(&opts.hourDuration, "hour", time.Minute, "real time per in-game hour")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newShowDatesCmd(opts))
	cmd.AddCommand(newGenDatesCmd(opts))
	cmd.AddCommand(newTestCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}
