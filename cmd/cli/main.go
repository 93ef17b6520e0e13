package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&exportCmd{}, "transfer")
	commander.Register(&importCmd{}, "transfer")
	commander.Register(&inspectCmd{}, "records")
	commander.Register(&uploadCmd{}, "storage")

	flag.StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
