package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"photofolio/builder"
	"photofolio/common"
	"photofolio/config"
	"photofolio/notify"
)

func main() {
	os.Exit(cli(os.Args[1:], os.Stderr))
}

// cli parses argv, runs the job and returns the process exit code.
func cli(argv []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("prepare-photos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (optional)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: prepare-photos [-config file] [sourceDir] [outputDir] [manifestFile]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := run(*configPath, fs.Args()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func run(configPath string, args []string) error {
	if len(args) > 3 {
		return fmt.Errorf("expected at most 3 arguments, got %d", len(args))
	}

	cfg, err := config.Resolve(configPath, ".env")
	if err != nil {
		return err
	}

	// Positional arguments win over every other source.
	targets := []*string{&cfg.Prepare.SourceDir, &cfg.Prepare.OutputDir, &cfg.Prepare.ManifestFile}
	for i, arg := range args {
		*targets[i] = arg
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := common.NewImageProcessor(cfg.Prepare.Processor)
	if err != nil {
		return err
	}

	result, err := builder.NewPreparer(cfg, proc).Run(ctx)

	summary := ""
	if result != nil {
		summary = fmt.Sprintf("Prepared %d images into %s", len(result.Photos), result.OutputDir)
	}
	notify.NewNtfySender(cfg).Report(context.WithoutCancel(ctx), "prepare-photos", summary, cfg.Prepare.BaseURL(), err)

	return err
}
