// Package main implements the rambo NES emulator executable.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"rambo/internal/app"
	"rambo/internal/cartridge"
	"rambo/internal/controller"
	"rambo/internal/graphics"
	"rambo/internal/machine"
	"rambo/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		dumpFrames = flag.String("dump-frames", "", "Write periodic frame-buffer text dumps to this directory (debugging)")
		dumpFrame  = flag.String("dump-frame", "", "Write periodic upscaled PNG frame dumps to this directory (headless mode)")
		dumpScale  = flag.Int("dump-frame-scale", 2, "Nearest-neighbour upscale factor for -dump-frame PNGs")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	cfg := app.NewConfig()
	if err := cfg.LoadFromFile(configPath); err != nil {
		glog.Warningf("using default config: %v", err)
	}

	fmt.Println("rambo - Go NES Emulator")

	state := machine.New()
	states := app.NewStateManager(cfg.Paths.SaveStates)

	if *romFile == "" {
		log.Fatal("a ROM file is required: -rom <file>")
	}
	img, err := app.LoadROMFile(*romFile)
	if err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}
	cart, err := cartridge.New(img)
	if err != nil {
		log.Fatalf("failed to build cartridge: %v", err)
	}
	state.LoadCartridge(cart)
	fmt.Printf("loaded %s\n", *romFile)

	if *dumpFrames != "" {
		state.EnableFrameDump(*dumpFrames, 60, 20)
	}

	sup := app.NewSupervisor(state)
	ctx, cancel := context.WithCancel(context.Background())
	setupGracefulShutdown(cancel)

	if *nogui {
		runHeadless(ctx, sup, state, *dumpFrame, *dumpScale)
		return
	}
	runGUI(ctx, cancel, sup, state, cfg, states, *romFile)
	fmt.Println("shutting down")
}

// runHeadless drives the emulation thread with no display, still
// pulling every published frame through a headless graphics.Window so
// -dump-frame PNG dumps (and, in the future, other headless sinks) see
// real frames rather than relying on a window that was never created.
func runHeadless(ctx context.Context, sup *app.Supervisor, state *machine.EmulationState, dumpDir string, dumpScale int) {
	fmt.Println("running headless")

	backend, err := graphics.CreateBackend(graphics.BackendHeadless)
	if err != nil {
		log.Fatalf("failed to create headless backend: %v", err)
	}
	if err := backend.Initialize(graphics.Config{Headless: true}); err != nil {
		log.Fatalf("failed to initialize headless backend: %v", err)
	}
	window, err := backend.CreateWindow("rambo", 256, 240)
	if err != nil {
		log.Fatalf("failed to create headless window: %v", err)
	}
	if hw, ok := window.(*graphics.HeadlessWindow); ok && dumpDir != "" {
		hw.EnableFrameDump(dumpDir, 60, dumpScale, 20)
	}

	go func() {
		if err := sup.RunEmulation(ctx); err != nil && err != context.Canceled {
			log.Printf("emulation thread stopped: %v", err)
		}
	}()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if frame, ok := state.LatestFrame(); ok {
				window.RenderFrame(frame.Pixels)
			}
		}
	}
}

func runGUI(ctx context.Context, cancel context.CancelFunc, sup *app.Supervisor, state *machine.EmulationState, cfg *app.Config, states *app.StateManager, romFile string) {
	go func() {
		if err := sup.RunEmulation(ctx); err != nil && err != context.Canceled {
			log.Printf("emulation thread stopped: %v", err)
		}
	}()

	backend, err := graphics.CreateBackend(graphics.BackendEbitengine)
	if err != nil {
		log.Fatalf("failed to create graphics backend: %v", err)
	}
	width, height := cfg.GetWindowResolution()
	if err := backend.Initialize(graphics.Config{
		WindowTitle:  "rambo",
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   cfg.Window.Fullscreen,
		VSync:        cfg.Video.VSync,
		Filter:       cfg.Video.Filter,
		AspectRatio:  cfg.Video.AspectRatio,
	}); err != nil {
		log.Fatalf("failed to initialize graphics backend: %v", err)
	}
	window, err := backend.CreateWindow("rambo", width, height)
	if err != nil {
		log.Fatalf("failed to create window: %v", err)
	}

	runner, ok := window.(interface{ Run() error })
	if !ok {
		log.Fatal("graphics backend does not support a blocking run loop")
	}

	input := &inputState{}
	videoFX := graphics.NewVideoProcessor(cfg.Video.Brightness, cfg.Video.Contrast, cfg.Video.Saturation)
	if w, ok := window.(interface {
		SetEmulatorUpdateFunc(func() error)
	}); ok {
		w.SetEmulatorUpdateFunc(func() error {
			return pumpFrame(window, state, states, romFile, input, videoFX)
		})
	}

	if err := runner.Run(); err != nil {
		log.Printf("presentation loop ended: %v", err)
	}
	cancel()
}

// inputState tracks which buttons are currently held, since PollEvents
// only reports press/release transitions; without this, a button held
// across several Update ticks with no fresh event would read as
// released on every tick after the first.
type inputState struct {
	p1, p2 uint8
}

// pumpFrame drains the latest published frame into the window and
// applies any pending button/save-state input events; it runs once per
// Ebitengine Update tick, collapsing the presentation and input threads
// into Ebitengine's single callback since that backend already
// serialises the two.
func pumpFrame(window graphics.Window, state *machine.EmulationState, states *app.StateManager, romFile string, input *inputState, videoFX *graphics.VideoProcessor) error {
	if frame, ok := state.LatestFrame(); ok {
		pixels := frame.Pixels
		processed := videoFX.ProcessFrame(pixels[:])
		copy(pixels[:], processed)
		if err := window.RenderFrame(pixels); err != nil {
			return err
		}
	}

	for _, ev := range window.PollEvents() {
		switch ev.Type {
		case graphics.InputEventTypeQuit:
			return fmt.Errorf("quit requested")
		case graphics.InputEventTypeButton:
			applyButton(&input.p1, &input.p2, ev.Button, ev.Pressed)
		case graphics.InputEventTypeKey:
			if ev.Pressed {
				handleStateKey(ev.Key, state, states, romFile)
			}
		}
	}
	state.SetButtons(machine.ButtonState{Port1: input.p1, Port2: input.p2})
	return nil
}

// handleStateKey maps F1-F5 to save slots 0-4 and F6-F10 to the
// matching load, mirroring the teacher CLI's save/load key scheme
// without relying on modifier-key events the backend never populates.
func handleStateKey(key graphics.Key, state *machine.EmulationState, states *app.StateManager, romFile string) {
	saveSlots := map[graphics.Key]int{
		graphics.KeyF1: 0, graphics.KeyF2: 1, graphics.KeyF3: 2, graphics.KeyF4: 3, graphics.KeyF5: 4,
	}
	loadSlots := map[graphics.Key]int{
		graphics.KeyF6: 0, graphics.KeyF7: 1, graphics.KeyF8: 2, graphics.KeyF9: 3, graphics.KeyF10: 4,
	}
	if slot, ok := saveSlots[key]; ok {
		if err := states.SaveState(state, slot, romFile); err != nil {
			glog.Warningf("save state slot %d: %v", slot, err)
		}
		return
	}
	if slot, ok := loadSlots[key]; ok {
		if err := states.LoadState(state, slot, romFile); err != nil {
			glog.Warningf("load state slot %d: %v", slot, err)
		}
	}
}

func applyButton(p1, p2 *uint8, button graphics.Button, pressed bool) {
	var mask *uint8
	var bit controller.Button
	switch button {
	case graphics.ButtonA:
		mask, bit = p1, controller.ButtonA
	case graphics.ButtonB:
		mask, bit = p1, controller.ButtonB
	case graphics.ButtonSelect:
		mask, bit = p1, controller.ButtonSelect
	case graphics.ButtonStart:
		mask, bit = p1, controller.ButtonStart
	case graphics.ButtonUp:
		mask, bit = p1, controller.ButtonUp
	case graphics.ButtonDown:
		mask, bit = p1, controller.ButtonDown
	case graphics.ButtonLeft:
		mask, bit = p1, controller.ButtonLeft
	case graphics.ButtonRight:
		mask, bit = p1, controller.ButtonRight
	case graphics.Button2A:
		mask, bit = p2, controller.ButtonA
	case graphics.Button2B:
		mask, bit = p2, controller.ButtonB
	case graphics.Button2Select:
		mask, bit = p2, controller.ButtonSelect
	case graphics.Button2Start:
		mask, bit = p2, controller.ButtonStart
	case graphics.Button2Up:
		mask, bit = p2, controller.ButtonUp
	case graphics.Button2Down:
		mask, bit = p2, controller.ButtonDown
	case graphics.Button2Left:
		mask, bit = p2, controller.ButtonLeft
	case graphics.Button2Right:
		mask, bit = p2, controller.ButtonRight
	default:
		return
	}
	if pressed {
		*mask |= uint8(bit)
	} else {
		*mask &^= uint8(bit)
	}
}

func setupGracefulShutdown(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\ninterrupt received, shutting down")
		cancel()
	}()
}

func printUsage() {
	fmt.Println("rambo - Go NES Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  rambo -rom <file> [options]")
	fmt.Println("  rambo -nogui -rom <file> [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  Player 1:")
	fmt.Println("    Arrow Keys / WASD - D-Pad")
	fmt.Println("    J                 - A Button")
	fmt.Println("    K                 - B Button")
	fmt.Println("    Enter             - Start")
	fmt.Println("    Space             - Select")
	fmt.Println("  Player 2:")
	fmt.Println("    1-4               - D-Pad")
	fmt.Println("    5 / 6             - A / B")
	fmt.Println("    7 / 8             - Start / Select")
	fmt.Println("    Escape            - Quit")
}
