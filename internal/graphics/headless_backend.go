package graphics

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// HeadlessBackend implements the Backend interface without a display,
// for cmd/rambo's -nogui path: it still receives every published frame,
// it just never opens a window.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation,
// optionally dumping periodic frames to disk as nearest-neighbour
// upscaled PNGs (cmd/rambo's -dump-frame flag).
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int

	dumpDir      string
	dumpInterval int
	dumpScale    int
	maxDumps     int
	dumpsWritten int
}

// NewHeadlessBackend creates a new headless graphics backend.
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend.
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a headless "window" (no actual window).
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	return &HeadlessWindow{
		title:        title,
		width:        width,
		height:       height,
		running:      true,
		dumpInterval: 1,
		dumpScale:    1,
	}, nil
}

// Cleanup releases all headless resources.
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless always reports true for this backend.
func (b *HeadlessBackend) IsHeadless() bool { return true }

// GetName returns the backend name.
func (b *HeadlessBackend) GetName() string { return "Headless" }

// SetTitle sets the window title (for logging purposes).
func (w *HeadlessWindow) SetTitle(title string) { w.title = title }

// GetSize returns window dimensions.
func (w *HeadlessWindow) GetSize() (width, height int) { return w.width, w.height }

// ShouldClose returns true if window should close.
func (w *HeadlessWindow) ShouldClose() bool { return !w.running }

// SwapBuffers does nothing in headless mode.
func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents returns an empty events list (no input in headless mode).
func (w *HeadlessWindow) PollEvents() []InputEvent { return nil }

// EnableFrameDump turns on periodic PNG dumps of every interval-th
// frame, upscaled scale-times with nearest-neighbour sampling, up to
// maxDumps files, written under dir.
func (w *HeadlessWindow) EnableFrameDump(dir string, interval, scale, maxDumps int) {
	w.dumpDir = dir
	if interval < 1 {
		interval = 1
	}
	if scale < 1 {
		scale = 1
	}
	w.dumpInterval = interval
	w.dumpScale = scale
	w.maxDumps = maxDumps
	os.MkdirAll(dir, 0755)
}

// RenderFrame accepts a published frame and, if frame dumping is
// enabled, occasionally writes it to disk as a PNG.
func (w *HeadlessWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	w.frameCount++

	if w.dumpDir == "" || w.maxDumps > 0 && w.dumpsWritten >= w.maxDumps {
		return nil
	}
	if w.frameCount%w.dumpInterval != 0 {
		return nil
	}

	filename := filepath.Join(w.dumpDir, fmt.Sprintf("frame_%06d.png", w.frameCount))
	if err := w.saveFramePNG(frameBuffer, filename, w.dumpScale); err != nil {
		return err
	}
	w.dumpsWritten++
	return nil
}

// saveFramePNG upscales frameBuffer by scale using nearest-neighbour
// sampling (the right filter for a pixel-art source, matching the
// "nearest"/"linear" choice cmd/rambo already exposes for the live
// Ebitengine window) and writes it as a PNG.
func (w *HeadlessWindow) saveFramePNG(frameBuffer [256 * 240]uint32, filename string, scale int) error {
	src := image.NewRGBA(image.Rect(0, 0, 256, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			src.SetRGBA(x, y, color.RGBA{
				R: uint8(pixel >> 16),
				G: uint8(pixel >> 8),
				B: uint8(pixel),
				A: 255,
			})
		}
	}

	dst := src
	if scale > 1 {
		dst = image.NewRGBA(image.Rect(0, 0, 256*scale, 240*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %v", filename, err)
	}
	defer file.Close()

	return png.Encode(file, dst)
}

// Cleanup releases window resources.
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the current frame count.
func (w *HeadlessWindow) GetFrameCount() int { return w.frameCount }
