package main

import (
	"github.com/jessevdk/go-flags"
)

// options defines command line options.
type options struct {
	Config  string `short:"c" long:"config" description:"path to the YAML config or legacy .ini file" default:"config.yaml"`
	Once    bool   `long:"once" description:"run a single poll cycle and exit"`
	Debug   bool   `short:"d" long:"debug" description:"debug logging, overrides logging.level"`
	Version bool   `short:"v" long:"version" description:"display the version and exit"`
}

// parseArgs returns parsed command-line flags.
func parseArgs(args []string) (*options, error) {
	opt := &options{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Name = "datacore-poller"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opt, nil
}

func isHelp(err error) bool {
	return flags.WroteHelp(err)
}
