// Package main implements gones-display, a thin Ebitengine host that drives
// EmulationState through its public interface (framebuffer attach,
// controller state injection) and owns no emulation state of its own,
// analogous to the teacher's cmd/gones/main.go plus
// internal/graphics/ebitengine_backend.go combined into one small loop.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"gones/internal/cartridge"
	"gones/internal/controller"
	"gones/internal/emulator"
	"gones/internal/version"
)

const (
	nesWidth    = 256
	nesHeight   = 240
	windowScale = 3
)

// game adapts EmulationState to ebiten.Game. It is a thin host: every frame
// it reads keyboard state into Port1, calls EmulateFrame, and blits the
// resulting framebuffer. It holds no NES state itself.
type game struct {
	state      *emulator.EmulationState
	frameImage *ebiten.Image
}

func newGame(state *emulator.EmulationState) *game {
	return &game{
		state:      state,
		frameImage: ebiten.NewImage(nesWidth, nesHeight),
	}
}

func (g *game) Update() error {
	g.readInput()
	if err := g.state.EmulateFrame(); err != nil {
		return fmt.Errorf("emulate frame: %w", err)
	}
	return nil
}

func (g *game) readInput() {
	pad := &g.state.Controllers.Port1
	pad.SetButton(controller.ButtonUp, ebiten.IsKeyPressed(ebiten.KeyArrowUp))
	pad.SetButton(controller.ButtonDown, ebiten.IsKeyPressed(ebiten.KeyArrowDown))
	pad.SetButton(controller.ButtonLeft, ebiten.IsKeyPressed(ebiten.KeyArrowLeft))
	pad.SetButton(controller.ButtonRight, ebiten.IsKeyPressed(ebiten.KeyArrowRight))
	pad.SetButton(controller.ButtonA, ebiten.IsKeyPressed(ebiten.KeyJ) || ebiten.IsKeyPressed(ebiten.KeyZ))
	pad.SetButton(controller.ButtonB, ebiten.IsKeyPressed(ebiten.KeyK) || ebiten.IsKeyPressed(ebiten.KeyX))
	pad.SetButton(controller.ButtonStart, ebiten.IsKeyPressed(ebiten.KeyEnter))
	pad.SetButton(controller.ButtonSelect, ebiten.IsKeyPressed(ebiten.KeySpace))
}

func (g *game) Draw(screen *ebiten.Image) {
	g.frameImage.WritePixels(g.state.Framebuffer())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(windowScale, windowScale)
	screen.DrawImage(g.frameImage, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return nesWidth * windowScale, nesHeight * windowScale
}

func main() {
	romFile := flag.String("rom", "", "Path to NES ROM file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(0)
	}
	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "gones-display: -rom is required")
		os.Exit(2)
	}

	romData, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("[CORE] failed to read ROM %s: %v", *romFile, err)
	}
	cart, err := cartridge.LoadINES(romData)
	if err != nil {
		log.Fatalf("[INES] failed to load %s: %v", *romFile, err)
	}

	state := emulator.New()
	state.LoadCartridge(cart)

	ebiten.SetWindowTitle("gones-display")
	ebiten.SetWindowSize(nesWidth*windowScale, nesHeight*windowScale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(newGame(state)); err != nil {
		log.Fatalf("[CORE] display run failed: %v", err)
	}
}
