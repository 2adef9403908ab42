// Package main implements gones-core, the headless CLI harness for the NES
// emulation core: load a ROM, run it for a fixed frame budget, optionally
// trace CPU execution or dump a snapshot, then exit.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gones/internal/cartridge"
	"gones/internal/coreconfig"
	"gones/internal/emulator"
	"gones/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to NES ROM file (required)")
		configFile  = flag.String("config", "", "Path to configuration file")
		frameBudget = flag.Int("frames", 0, "Number of frames to run (0 = use config default)")
		traceCPU    = flag.Bool("trace", false, "Write a trace line per frame (to trace_path, or stderr if unset)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "gones-core: -rom is required")
		flag.Usage()
		os.Exit(2)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = coreconfig.GetDefaultConfigPath()
	}
	cfg := coreconfig.NewConfig()
	if err := cfg.LoadFromFile(configPath); err != nil {
		log.Fatalf("[CORE] failed to load config: %v", err)
	}
	if *frameBudget > 0 {
		cfg.FrameBudget = *frameBudget
	}
	if *traceCPU {
		cfg.TraceCPU = true
	}

	setupGracefulShutdown()

	romData, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("[CORE] failed to read ROM %s: %v", *romFile, err)
	}
	cart, err := cartridge.LoadINES(romData)
	if err != nil {
		log.Fatalf("[INES] failed to load %s: %v", *romFile, err)
	}

	traceOut, closeTrace := openTraceWriter(cfg)
	defer closeTrace()

	state := emulator.New()
	state.LoadCartridge(cart)
	log.Printf("[CORE] loaded %s, running %d frames", *romFile, cfg.FrameBudget)

	for frame := 0; frame < cfg.FrameBudget; frame++ {
		if err := state.EmulateFrame(); err != nil {
			log.Fatalf("[EMU] frame %d: %v", frame, err)
		}
		if cfg.TraceCPU {
			fmt.Fprintf(traceOut, "[EMU] frame %d complete: %s\n", frame, state.String())
		}
		if state.CpuHalted() {
			log.Printf("[EMU] CPU halted (JAM opcode) at frame %d", frame)
			break
		}
	}

	if cfg.SnapshotPath != "" {
		if err := os.WriteFile(cfg.SnapshotPath, state.Snapshot(), 0o644); err != nil {
			log.Fatalf("[CORE] failed to write snapshot: %v", err)
		}
		log.Printf("[CORE] snapshot written to %s", cfg.SnapshotPath)
	}

	log.Printf("[CORE] run complete: %s", state.String())
}

// openTraceWriter returns where per-frame trace lines go: cfg.TracePath if
// set, stderr otherwise. The returned closer is always safe to defer.
func openTraceWriter(cfg *coreconfig.Config) (io.Writer, func()) {
	if cfg.TracePath == "" {
		return os.Stderr, func() {}
	}
	f, err := os.Create(cfg.TracePath)
	if err != nil {
		log.Fatalf("[CORE] failed to create trace file %s: %v", cfg.TracePath, err)
	}
	return f, func() { f.Close() }
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("[CORE] interrupt received, shutting down")
		os.Exit(0)
	}()
}
