package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"apploto/application"
	"apploto/config"
	"apploto/database"
	"apploto/domain/interfaces"
	"apploto/infrastructure"
	"apploto/infrastructure/auth"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// Simulate creates and finalizes one simulation lottery, then prints its ranking to out.
// Events are dropped so simulations run from the CLI never notify anyone.
func Simulate(ctx context.Context, cfg *config.Config, input interfaces.SimulationInput, out io.Writer) error {
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	clock := clockwork.NewRealClock()
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	services := application.NewServiceFactory(application.ServiceDependencies{
		Clock:  clock,
		Hasher: auth.NewBcryptHasher(cfg.BcryptCost),
		Issuer: auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, clock),
		Faker:  gofakeit.New(0),
	})

	var outcome *interfaces.DrawOutcome
	err = application.RunInUnitOfWork(ctx, uowFactory, func(uow application.UnitOfWork) error {
		var err error
		outcome, err = services.SimulationService(uow).Simulate(ctx, input)
		return err
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	log.WithField("lottery_id", outcome.Lottery.ID).Info("Simulation stored")
	return PrintOutcome(out, outcome)
}

// PrintOutcome writes the winning numbers and the ranking as an aligned table
func PrintOutcome(out io.Writer, outcome *interfaces.DrawOutcome) error {
	fmt.Fprintf(out, "Lottery %d: %s\n", outcome.Lottery.ID, outcome.Lottery.Name)
	fmt.Fprintf(out, "Winning numbers: %s  lucky: %s\n\n", outcome.Result.WinningNumbers, outcome.Result.WinningLuckyNumbers)

	if outcome.Outcome == nil || !outcome.Outcome.HasWinners() {
		fmt.Fprintln(out, "No participant reached the minimum score.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPLAYER\tSCORE\tWINNINGS")
	for _, r := range outcome.Outcome.Results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\n", r.Rank, r.Name, r.Score, r.Winnings)
	}
	fmt.Fprintf(w, "\t\t\t%.2f of %.2f\n", outcome.Outcome.Distributed(), outcome.Lottery.RewardPrice)
	return w.Flush()
}
