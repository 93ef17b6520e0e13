package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/dvloznov/hikmacash/internal/pipeline"
	"github.com/google/subcommands"
)

type inspectCmd struct {
	user string
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "print a user's stored records" }
func (*inspectCmd) Usage() string {
	return `cli inspect -user <id>
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to inspect")
}

func (c *inspectCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	ctx, e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := inspect(ctx, os.Stdout, e.backends.Records, c.user); err != nil {
		e.log.Error().Err(err).Str("user_id", c.user).Msg("Inspect failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func inspect(ctx context.Context, w io.Writer, store pipeline.RecordStore, userID string) error {
	setting, err := store.GetEnterpriseSetting(ctx, userID)
	if err != nil {
		return fmt.Errorf("get enterprise setting: %w", err)
	}
	categories, err := store.ListCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	transactions, err := store.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	fmt.Fprintln(w, "=== Enterprise ===")
	if setting != nil {
		fmt.Fprintf(w, "Name: %s\n", setting.Name)
	} else {
		fmt.Fprintln(w, "Name: (not set)")
	}

	fmt.Fprintf(w, "\n=== Categories (%d) ===\n", len(categories))
	for _, c := range categories {
		fmt.Fprintf(w, "%-8s %s\n", c.Type, c.Name)
	}

	fmt.Fprintf(w, "\n=== Transactions (%d) ===\n", len(transactions))
	for i, tx := range transactions {
		printTransaction(w, i+1, tx)
	}
	return nil
}

func printTransaction(w io.Writer, n int, tx domain.Transaction) {
	fmt.Fprintf(w, "\n%d. %s\n", n, tx.Description)
	fmt.Fprintf(w, "   Date:     %s\n", tx.Date)
	fmt.Fprintf(w, "   Amount:   %s (%s)\n", tx.Amount.StringFixed(2), tx.Type)
	fmt.Fprintf(w, "   Category: %s\n", tx.Category)
	if tx.Client != nil {
		fmt.Fprintf(w, "   Client:   %s\n", *tx.Client)
	}
}
