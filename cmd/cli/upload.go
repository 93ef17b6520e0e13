package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dvloznov/hikmacash/internal/gcs"
	"github.com/google/subcommands"
)

type uploadCmd struct {
	file   string
	object string
	user   string
}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "upload a local file to the export bucket" }
func (*uploadCmd) Usage() string {
	return `cli upload -file <path> [-user <id>] [-object <name>]

  Stores the file in the export bucket. With -user the object is placed
  under that user's prefix, which is where import documents are expected.
`
}

func (c *uploadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Path to the local file")
	f.StringVar(&c.object, "object", "", "Object name (defaults to the file name)")
	f.StringVar(&c.user, "user", "", "Place the object under this user's prefix")
}

func (c *uploadCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		return subcommands.ExitUsageError
	}

	ctx, e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if e.backends.GCS == nil {
		fmt.Fprintln(os.Stderr, errNoGCS)
		return subcommands.ExitFailure
	}

	object := uploadObjectName(c.file, c.object, c.user)
	e.log.Info().
		Str("bucket", e.backends.GCS.Bucket()).
		Str("object", object).
		Str("file", c.file).
		Msg("Uploading file to GCS")

	if err := e.backends.GCS.UploadFile(ctx, object, c.file, contentTypeFor(c.file)); err != nil {
		e.log.Error().Err(err).Msg("Upload failed")
		return subcommands.ExitFailure
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", c.file, e.backends.GCS.Bucket(), object)
	return subcommands.ExitSuccess
}

func uploadObjectName(path, object, userID string) string {
	if object == "" {
		object = filepath.Base(path)
	}
	if userID != "" {
		return gcs.UserObjectKey(userID, object)
	}
	return object
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
