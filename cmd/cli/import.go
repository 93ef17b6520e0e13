package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dvloznov/hikmacash/internal/auth"
	"github.com/dvloznov/hikmacash/internal/pipeline"
	"github.com/google/subcommands"
)

type importCmd struct {
	user   string
	file   string
	gcsURI string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace a user's records from an export document" }
func (*importCmd) Usage() string {
	return `cli import -user <id> (-file <path> | -gcs-uri gs://bucket/object)

  Reads a JSON export document and replaces the collections it carries.
  Collections absent from the document are left untouched.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id whose records are replaced")
	f.StringVar(&c.file, "file", "", "Local path of the document ('-' for stdin)")
	f.StringVar(&c.gcsURI, "gcs-uri", "", "Cloud Storage URI of the document")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireUser(c.user); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if (c.file == "") == (c.gcsURI == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -gcs-uri is required")
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

	var fetcher uriFetcher
	if e.backends.GCS != nil {
		fetcher = e.backends.GCS
	}
	raw, err := readDocument(ctx, c.file, c.gcsURI, fetcher, os.Stdin, e.cfg.Transfer.MaxImportBytes)
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to read import document")
		return subcommands.ExitFailure
	}

	importer := pipeline.NewImporter(auth.StaticResolver{UserID: c.user}, e.backends.Records)
	res, err := importer.Import(ctx, "", raw)
	if err != nil {
		e.log.Error().Err(err).Str("user_id", c.user).Msg("Import failed")
		return subcommands.ExitFailure
	}

	printImportResult(os.Stdout, res)
	return subcommands.ExitSuccess
}

type uriFetcher interface {
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

var errDocumentTooLarge = errors.New("document exceeds the import size limit")

// readDocument loads the import document from a local path, stdin or a
// Cloud Storage URI, refusing anything larger than maxBytes.
func readDocument(ctx context.Context, path, gcsURI string, fetcher uriFetcher, stdin io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = math.MaxInt64 - 1
	}

	var raw []byte
	switch {
	case gcsURI != "":
		if fetcher == nil {
			return nil, errNoGCS
		}
		data, err := fetcher.Fetch(ctx, gcsURI)
		if err != nil {
			return nil, err
		}
		raw = data
	case path == "-":
		data, err := io.ReadAll(io.LimitReader(stdin, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = data
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", path, err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		raw = data
	}

	if int64(len(raw)) > maxBytes {
		return nil, errDocumentTooLarge
	}
	return raw, nil
}

func printImportResult(w io.Writer, res *pipeline.ImportResult) {
	if !res.TransactionsReplaced && !res.CategoriesReplaced && !res.EnterpriseNameUpdated {
		fmt.Fprintln(w, "Nothing to import.")
		return
	}
	if res.TransactionsReplaced {
		fmt.Fprintf(w, "Transactions replaced: %d\n", res.TransactionCount)
	}
	if res.CategoriesReplaced {
		fmt.Fprintf(w, "Categories replaced:   %d\n", res.CategoryCount)
	}
	if res.EnterpriseNameUpdated {
		fmt.Fprintln(w, "Enterprise name updated.")
	}
}
