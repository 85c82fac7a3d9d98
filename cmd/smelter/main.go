// cmd/smelter is the compositor's process entrypoint: loads config, wires
// the pipeline and control-plane API together, and runs until interrupted.
// Grounded on the teacher's root main.go (flag parsing, signal-driven
// graceful shutdown, startup banner), collapsed to a single headless `run`
// command since there is no GUI/peer/rendezvous split in this domain.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/smeltergo/compositor/internal/api"
	"github.com/smeltergo/compositor/internal/config"
	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/pipeline"
)

var (
	showHelp   = flag.Bool("h", false, "Show help")
	version    = flag.Bool("version", false, "Show version")
	configPath = flag.String("config", "smelter.json", "Path to the compositor config file")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("smelter v%s\n", appVersion)
		return
	}
	if *showHelp {
		showUsage()
		return
	}

	absPath, err := filepath.Abs(*configPath)
	if err != nil {
		log.Fatalf("invalid config path: %v", err)
	}

	cfg, created, err := config.Ensure(absPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	printBanner(absPath, cfg, created)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("compositor failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	p := pipeline.NewPipeline(pipeline.Config{
		FramerateNum:     cfg.Queue.OutputFramerateNum,
		FramerateDen:     cfg.Queue.OutputFramerateDen,
		RealTimeMode:     cfg.Queue.RealTimeMode,
		MixingSampleRate: cfg.Mixer.MixingSampleRate,
	}, nil)
	p.SetTransportOpener(glue.NewNetTransportOpener())

	images, err := glue.NewImageAssetStore()
	if err != nil {
		return fmt.Errorf("create image asset store: %w", err)
	}
	defer images.Close()

	var auth *glue.BearerAuthenticator
	if cfg.API.BearerToken != "" {
		auth = glue.NewBearerAuthenticator(cfg.API.BearerToken)
	}

	deps := api.Deps{Pipeline: p, Auth: auth, ImageAssets: images}
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("control plane listening on %s", addr)
	return api.Serve(ctx, addr, deps)
}

func showUsage() {
	fmt.Println("smelter - real-time video/audio compositor")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  smelter [-config path/to/smelter.json]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config   Path to the compositor config file (default smelter.json)")
	fmt.Println("  -h        Show this help message")
	fmt.Println("  -version  Show version information")
}

func printBanner(cfgPath string, cfg config.Config, createdNew bool) {
	fmt.Println("╔════════════════════════════════════════════════════════╗")
	fmt.Println("║                    Smelter Compositor                   ║")
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Config File:    %s\n", cfgPath)
	if createdNew {
		fmt.Println("                (created with defaults)")
	}
	fmt.Printf("Control Plane:  http://127.0.0.1:%d\n", cfg.API.Port)
	fmt.Printf("Output Rate:    %d/%d fps\n", cfg.Queue.OutputFramerateNum, cfg.Queue.OutputFramerateDen)
	fmt.Printf("Mixing Rate:    %d Hz\n", cfg.Mixer.MixingSampleRate)
	fmt.Println()
	fmt.Println("Starting compositor... (Press Ctrl+C to stop)")
	fmt.Println("────────────────────────────────────────────────────────")
	fmt.Println()
}
