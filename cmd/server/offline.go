package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"quakecraft.ai/internal/persistence/kvstore"
	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/command"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/quake"
)

// printNotifier writes notification text to the command output.
type printNotifier struct{ w io.Writer }

func (p printNotifier) Broadcast(n protocol.Notification) {
	fmt.Fprintf(p.w, "[broadcast] %s\n", n.Text())
}

func (p printNotifier) Send(playerID string, n protocol.Notification) {
	fmt.Fprintf(p.w, "[%s] %s\n", playerID, n.Text())
}

type fixedRoster []entity.Player

func (r fixedRoster) OnlinePlayers() []entity.Player { return r }

func quietLogger(cmd *cobra.Command, verbose bool) *log.Logger {
	if verbose {
		return log.New(cmd.ErrOrStderr(), "", log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}

// runOffline opens the world without a hub and runs one operator command.
func runOffline(cmd *cobra.Command, opts *options, line string) error {
	r, err := openRuntime(opts, quietLogger(cmd, false))
	if err != nil {
		return err
	}
	defer r.Close()

	r.wire(fixedRoster(nil), printNotifier{cmd.OutOrStdout()})
	out, err := r.Execute(command.Caller{PlayerID: "console"}, line)
	if err != nil {
		return fmt.Errorf("%s", command.PlayerMessage(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newShowDatesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "showdates",
		Short: "List this year's scheduled earthquakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOffline(cmd, opts, "/earthquake showdates")
		},
	}
}

func newGenDatesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gendates",
		Short: "Regenerate and persist this year's earthquake schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOffline(cmd, opts, "/earthquake gendates")
		},
	}
}

type testConfig struct {
	x, z    int
	limit   time.Duration
	step    time.Duration
	verbose bool
}

func newTestCmd(opts *options) *cobra.Command {
	cfg := &testConfig{}

	cmd := &cobra.Command{
		Use:   "test <magnitude>",
		Short: "Run a test earthquake in virtual time and print its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, cfg, args[0])
		},
	}

	cmd.Flags().IntVar(&cfg.x, "x", 0, "epicenter x")
	cmd.Flags().IntVar(&cfg.z, "z", 0, "epicenter z")
	cmd.Flags().DurationVar(&cfg.limit, "limit", 30*time.Minute, "virtual time limit")
	cmd.Flags().DurationVar(&cfg.step, "step", 250*time.Millisecond, "virtual time step")
	cmd.Flags().BoolVarP(&cfg.verbose, "verbose", "v", false, "log quake progress to stderr")

	return cmd
}

func runTest(cmd *cobra.Command, opts *options, cfg *testConfig, magnitude string) error {
	r, err := openRuntime(opts, quietLogger(cmd, cfg.verbose))
	if err != nil {
		return err
	}
	defer r.Close()

	pos := r.world.SurfaceAt(cfg.x, cfg.z)
	r.wire(fixedRoster{{ID: "console", Name: "console", Pos: pos}}, printNotifier{cmd.OutOrStdout()})

	var reports []quake.Report
	r.launcher.OnComplete(func(rep quake.Report) { reports = append(reports, rep) })

	out, err := r.Execute(command.Caller{PlayerID: "console", Pos: pos}, "/earthquake test "+magnitude)
	if err != nil {
		return fmt.Errorf("%s", command.PlayerMessage(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	step := max(cfg.step, time.Millisecond)
	for elapsed := time.Duration(0); r.launcher.InFlight() > 0 && elapsed < cfg.limit; elapsed += step {
		r.sched.Advance(step)
	}
	if r.launcher.InFlight() > 0 {
		return fmt.Errorf("quake still running after %s of virtual time", cfg.limit)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, rep := range reports {
		if err := enc.Encode(rep); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "virtual time %s, world %+v\n", r.sched.Elapsed(), r.world.Stats())
	return nil
}

type historyConfig struct {
	limit      int
	jsonOutput bool
}

func newHistoryCmd(opts *options) *cobra.Command {
	cfg := &historyConfig{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent finished earthquakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts, cfg)
		},
	}

	cmd.Flags().IntVarP(&cfg.limit, "limit", "n", 20, "number of quakes to list")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *options, cfg *historyConfig) error {
	db, err := kvstore.OpenSQLite(filepath.Join(opts.worldDir(), dbFile), log.New(cmd.ErrOrStderr(), "", 0))
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Quakes(cfg.limit)
	if err != nil {
		return err
	}

	if cfg.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No earthquakes recorded.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRECORDED\tMAG\tCENTER\tCARVED\tLOOT")
	for _, q := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d,%d,%d\t%d\t%d\n", q.ID, q.At, q.Magnitude, q.X, q.Y, q.Z, q.Carved, q.Loot)
	}
	return w.Flush()
}
