package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"apploto/cmd"
	"apploto/config"
	"apploto/database"
	"apploto/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	simParticipants int
	simReward       float64
	simName         string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Fatal("apploto failed")
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "apploto",
		Short:         "Lottery raffle backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the close worker and the event handlers",
		RunE:  serve,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				return database.MigratorFromEnv().Up()
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid steps %q: %w", args[0], err)
					}
					steps = n
				}
				return database.MigratorFromEnv().Down(steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				status, err := database.MigratorFromEnv().Status()
				if err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), status)
				return nil
			},
		},
	)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Create and draw a simulation lottery with generated players",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg := config.Get()
			cfg.ConfigureLogging()
			return cmd.Simulate(c.Context(), cfg, interfaces.SimulationInput{
				Name:         simName,
				Participants: simParticipants,
				RewardPrice:  simReward,
			}, c.OutOrStdout())
		},
	}
	simulateCmd.Flags().IntVar(&simParticipants, "participants", 50, "number of generated players")
	simulateCmd.Flags().Float64Var(&simReward, "reward", 1000, "reward pool to distribute")
	simulateCmd.Flags().StringVar(&simName, "name", "", "lottery name (generated when empty)")

	root.AddCommand(serveCmd, migrateCmd, simulateCmd)
	return root
}

func serve(c *cobra.Command, args []string) error {
	cfg := config.Get()
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Run(ctx, cfg)
}
