// Package main provides cokectl, a command-line client that records
// temperatures and LOAD/PUSH operations and lists derived coking cycles
// directly against the SQLite store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"coke_oven/internal/config"
	"coke_oven/internal/cycle"
	"coke_oven/internal/logger"
	"coke_oven/internal/service"
	"coke_oven/internal/system"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string
	strict     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:          "cokectl",
		Short:        "Record coke-oven telemetry and inspect coking cycles",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default configs/config.yml)")
	pf.StringVar(&g.dbPath, "db", "", "SQLite database path (overrides db.path)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (overrides log.level)")
	pf.BoolVar(&g.strict, "strict", false, "pair a PUSH only when the chamber's latest earlier event is a LOAD")

	rootCmd.AddCommand(newTempCmd(g))
	rootCmd.AddCommand(newOpCmd(g))
	rootCmd.AddCommand(newCyclesCmd(g))
	rootCmd.AddCommand(newOverviewCmd(g))

	return rootCmd
}

func newTempCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "temp OVEN TIME MACHINE_SIDE COKE_SIDE",
		Short: "Record a temperature sample",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			oven, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("oven %q: %w", args[0], err)
			}
			machine, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("machine side %q: %w", args[2], err)
			}
			coke, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("coke side %q: %w", args[3], err)
			}
			return withSystem(cmd, g, func(ctx context.Context, sys *system.System) error {
				err := sys.RecordTemperature(ctx, service.TemperatureInput{
					Oven: oven, Time: args[1], MachineSide: machine, CokeSide: coke,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{"status": "recorded"})
			})
		},
	}
}

func newOpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "op OVEN CHAMBER LOAD|PUSH TIME",
		Short: "Record a LOAD or PUSH operation; a PUSH derives a cycle",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			oven, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("oven %q: %w", args[0], err)
			}
			return withSystem(cmd, g, func(ctx context.Context, sys *system.System) error {
				err := sys.RecordOperation(ctx, service.OperationInput{
					Oven: oven, Chamber: args[1], Type: args[2], Time: args[3],
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]string{"status": "recorded"})
			})
		},
	}
}

func newCyclesCmd(g *globalFlags) *cobra.Command {
	var (
		oven     int
		chamber  string
		from, to string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "List derived coking cycles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := service.CycleFilter{Oven: oven, Chamber: chamber, Limit: limit}
			var err error
			if f.From, err = optionalTime(from); err != nil {
				return err
			}
			if f.To, err = optionalTime(to); err != nil {
				return err
			}
			return withSystem(cmd, g, func(ctx context.Context, sys *system.System) error {
				cycles, err := sys.Cycles(ctx, f)
				if err != nil {
					return err
				}
				return printJSON(cmd, cycles)
			})
		},
	}
	cmd.Flags().IntVar(&oven, "oven", 0, "filter by oven")
	cmd.Flags().StringVar(&chamber, "chamber", "", "filter by chamber")
	cmd.Flags().StringVar(&from, "from", "", "push time lower bound")
	cmd.Flags().StringVar(&to, "to", "", "push time upper bound")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum cycles returned")
	return cmd
}

func newOverviewCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the latest temperature and cycle per oven",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSystem(cmd, g, func(ctx context.Context, sys *system.System) error {
				status, err := sys.Overview(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, status)
			})
		},
	}
}

// withSystem opens the store for one command and closes it afterwards.
func withSystem(cmd *cobra.Command, g *globalFlags, fn func(context.Context, *system.System) error) (err error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.dbPath != "" {
		cfg.DB.Path = g.dbPath
	}
	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	ovens, err := cfg.OvenSet()
	if err != nil {
		return err
	}

	sys, err := system.Open(cfg.DB.Path, ovens, logger.New(level), service.Options{
		StrictAlternation: cfg.Matching.StrictAlternation || g.strict,
		Auth: service.AuthOptions{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	})
	if err != nil {
		return err
	}
	defer closeStore(sys, cfg.DB.Path, &err)

	return fn(cmd.Context(), sys)
}

// closeStore closes c and reports its failure through err unless the
// command already failed.
func closeStore(c io.Closer, path string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", path, cerr)
	}
}

func optionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return cycle.ParseTime(s)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
