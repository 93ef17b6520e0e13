package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dvloznov/hikmacash/internal/auth"
	"github.com/dvloznov/hikmacash/internal/pipeline"
	"github.com/google/subcommands"
)

type exportCmd struct {
	user       string
	format     string
	enterprise string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export a user's records and print a download link" }
func (*exportCmd) Usage() string {
	return `cli export -user <id> [-format json|excel] [-enterprise <name>]

  Builds the export artifact for the user, stores it under the user's
  prefix in the export bucket and prints a short-lived download link.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to export")
	f.StringVar(&c.format, "format", "json", "Artifact format (json, excel)")
	f.StringVar(&c.enterprise, "enterprise", "", "Enterprise name printed on the artifact, overriding the stored setting")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	exporter := pipeline.NewExporter(auth.StaticResolver{UserID: c.user}, e.backends.Records, e.backends.Objects,
		pipeline.WithTempDir(e.cfg.Transfer.TempDir))

	res, err := exporter.Export(ctx, "", pipeline.ExportRequest{Format: c.format, EnterpriseName: c.enterprise})
	if err != nil {
		e.log.Error().Err(err).Str("user_id", c.user).Msg("Export failed")
		return subcommands.ExitFailure
	}

	printExportResult(os.Stdout, res)
	return subcommands.ExitSuccess
}

func printExportResult(w io.Writer, res *pipeline.ExportResult) {
	fmt.Fprintf(w, "File:    %s\n", res.FileName)
	fmt.Fprintf(w, "Object:  %s\n", res.Key)
	fmt.Fprintf(w, "URL:     %s\n", res.URL)
	fmt.Fprintf(w, "Expires: %s\n", res.ExpiresAt.UTC().Format(time.RFC3339))
}
