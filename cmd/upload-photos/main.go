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

	"photofolio/config"
	"photofolio/deployer"
	"photofolio/notify"
)

func main() {
	os.Exit(cli(os.Args[1:], os.Stderr))
}

// cli parses argv, runs the job and returns the process exit code.
func cli(argv []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("upload-photos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (optional)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: upload-photos [-config file] [inputDir] [prefix]")
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
	if len(args) > 2 {
		return fmt.Errorf("expected at most 2 arguments, got %d", len(args))
	}

	cfg, err := config.Resolve(configPath, ".env")
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Publish.InputDir = args[0]
	}
	if len(args) > 1 {
		cfg.Publish.Prefix = args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := deployer.NewObjectStore(&cfg.Publish, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	result, err := deployer.NewDeployer(cfg, store, os.Stdout).Deploy(ctx)

	summary := ""
	if result != nil {
		summary = fmt.Sprintf("Uploaded %d files to %s/", len(result.Targets), result.Prefix)
	}
	notify.NewNtfySender(cfg).Report(context.WithoutCancel(ctx), "upload-photos", summary, "", err)

	return err
}
