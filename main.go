package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"photofolio/builder"
	"photofolio/common"
	"photofolio/config"
	"photofolio/deployer"
	"photofolio/notify"
	"photofolio/watcher"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	flag.Parse()

	fmt.Println("Photofolio - Photo Portfolio Pipeline")
	fmt.Println("=====================================")

	cfg, err := config.Resolve(*configPath, ".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	proc, err := common.NewImageProcessor(cfg.Prepare.Processor)
	if err != nil {
		log.Fatalf("Failed to create image processor: %v", err)
	}

	var store deployer.ObjectStore
	if cfg.Watch.Publish {
		store, err = deployer.NewObjectStore(&cfg.Publish, os.Stdout, os.Stderr)
		if err != nil {
			log.Fatalf("Failed to create blob store: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &pipeline{
		preparer: builder.NewPreparer(cfg, proc),
		store:    store,
		cfg:      cfg,
		notifier: notify.NewNtfySender(cfg),
	}

	log.Printf("Loaded config: watching %s (processor %s)", cfg.Prepare.SourceDir, proc.Name())

	// Initial run so the manifest matches the folder before any change arrives.
	p.run(ctx)

	w, err := watcher.NewWatcher(cfg, func(paths []string) {
		for _, path := range paths {
			log.Printf("📄 Changed: %s", path)
		}
		p.run(ctx)
	})
	if err != nil {
		log.Fatalf("Failed to create watcher: %v", err)
	}

	if err := w.Start(); err != nil {
		log.Fatalf("Failed to start watcher: %v", err)
	}

	go func() {
		for event := range w.Events() {
			log.Printf("Event: %v - %s", event.Type, event.FilePath)
		}
	}()

	log.Println("Press Ctrl+C to stop")
	<-ctx.Done()

	log.Println("Shutting down...")
	w.Stop()
}

// pipeline is one prepare run, optionally followed by a publish run
type pipeline struct {
	preparer *builder.Preparer
	store    deployer.ObjectStore
	cfg      *config.Config
	notifier *notify.NtfySender
}

func (p *pipeline) run(ctx context.Context) {
	result, err := p.preparer.Run(ctx)
	summary := ""
	if result != nil {
		summary = fmt.Sprintf("Prepared %d images into %s", len(result.Photos), result.OutputDir)
	}
	p.notifier.Report(context.WithoutCancel(ctx), "prepare-photos", summary, p.cfg.Prepare.BaseURL(), err)
	if err != nil {
		log.Printf("❌ Prepare failed: %v", err)
		return
	}

	if p.store == nil {
		return
	}

	// Publish what was just prepared.
	publish := *p.cfg
	publish.Publish.InputDir = result.OutputDir

	deployed, err := deployer.NewDeployer(&publish, p.store, os.Stdout).Deploy(ctx)
	summary = ""
	if deployed != nil {
		summary = fmt.Sprintf("Uploaded %d files to %s/", len(deployed.Targets), deployed.Prefix)
	}
	p.notifier.Report(context.WithoutCancel(ctx), "upload-photos", summary, "", err)
	if err != nil {
		log.Printf("❌ Publish failed: %v", err)
	}
}
