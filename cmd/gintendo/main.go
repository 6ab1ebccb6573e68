// Command gintendo runs an iNES ROM in an ebiten window, driving the
// console.Nes synchronizer at its native 60Hz frame rate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bwalton/nescore/console"
	"github.com/bwalton/nescore/debugger"
	"github.com/bwalton/nescore/frame"
	"github.com/bwalton/nescore/joypad"
	"github.com/bwalton/nescore/mos6502"
	"github.com/bwalton/nescore/nesrom"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	romFile   = flag.String("nes_rom", "", "Path to NES ROM to run.")
	verbose   = flag.Bool("verbose", false, "Log bus faults to stderr.")
	debugFlag = flag.Bool("debug", false, "Panic on an unimplemented opcode instead of treating it as a NOP.")
	traceFile = flag.String("trace", "", "If set, write a nestest-format instruction trace to this path.")
	showFPS   = flag.Bool("show_fps", false, "Overlay an FPS counter in the top-left corner.")
)

// Buttons, as bits, in the order joypad.Button* expects:
// A, B, Select, Start, Up, Down, Left, Right.
var keys = []ebiten.Key{
	ebiten.KeyZ,
	ebiten.KeyX,
	ebiten.KeySpace,
	ebiten.KeyEnter,
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
}

var buttonBits = []uint8{
	joypad.ButtonA,
	joypad.ButtonB,
	joypad.ButtonSelect,
	joypad.ButtonStart,
	joypad.ButtonUp,
	joypad.ButtonDown,
	joypad.ButtonLeft,
	joypad.ButtonRight,
}

// ebitenHost implements console.Host. Render copies the PPU's last
// completed frame into an ebiten.Image; PollEvents reads keyboard state
// into the joypad and reports Shutdown once game.Update has seen Escape,
// and Reset while R is held; ElapsedMillis
// and Delay are thin wrappers over wall-clock time, since ebiten's own
// Update/Draw loop is not what paces emulation - console.Nes.Run is.
type ebitenHost struct {
	img     *ebiten.Image
	resolve func(idx uint8) frame.RGBA
	start   time.Time
	fpsOn   bool
	frameN  int
	closing bool
}

func newEbitenHost() *ebitenHost {
	return &ebitenHost{img: ebiten.NewImage(frame.Width, frame.Height), start: time.Now(), fpsOn: *showFPS}
}

// Render resolves the just-completed frame's palette indices to RGBA and
// blits the result into the ebiten image the game's Draw call reads from.
// It runs on the synchronizer's goroutine, not ebiten's; WritePixels is
// safe to call off the ebiten-owned goroutine between Draw calls.
func (h *ebitenHost) Render(f *frame.Buffer) {
	h.frameN++
	if h.fpsOn {
		secs := time.Since(h.start).Seconds()
		if secs > 0 {
			frame.DrawText(f, fmt.Sprintf("%d", int(float64(h.frameN)/secs)), 4, 4, 0x30)
		}
	}

	pix := make([]byte, frame.Width*frame.Height*4)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := h.resolve(f.At(x, y))
			o := (y*frame.Width + x) * 4
			pix[o], pix[o+1], pix[o+2], pix[o+3] = c.R, c.G, c.B, c.A
		}
	}
	h.img.WritePixels(pix)
}

func (h *ebitenHost) PollEvents(pad *joypad.Joypad) console.HostOutcome {
	var buttons uint8
	for i, key := range keys {
		if ebiten.IsKeyPressed(key) {
			buttons |= buttonBits[i]
		}
	}
	pad.SetButtons(0, buttons)

	if h.closing {
		return console.HostShutdown
	}
	if ebiten.IsKeyPressed(ebiten.KeyR) {
		return console.HostReset
	}
	return console.HostContinue
}

func (h *ebitenHost) ElapsedMillis() uint64 { return uint64(time.Since(h.start).Milliseconds()) }

func (h *ebitenHost) Delay(ms uint64) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// game adapts an *ebitenHost to ebiten.Game; console.Nes.Run drives the
// emulation on its own goroutine, so Update only watches for Escape (which
// PollEvents turns into a shutdown) and Draw just blits whatever Render
// last produced.
type game struct {
	host *ebitenHost
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		g.host.closing = true
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.host.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return frame.Width, frame.Height
}

func main() {
	flag.Parse()
	mos6502.Debug = *debugFlag

	rom, err := nesrom.New(*romFile)
	if err != nil {
		log.Fatalf("invalid ROM: %v", err)
	}

	host := newEbitenHost()

	nes, err := console.New(rom, host)
	if err != nil {
		log.Fatalf("couldn't load mapper for %s: %v", rom, err)
	}
	nes.EnableBusFaultLogging(*verbose)
	host.resolve = nes.PPU().Resolve

	run := func(ctx context.Context) { nes.Run(ctx) }
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			log.Fatalf("couldn't create trace file: %v", err)
		}
		defer f.Close()
		dbg := debugger.New(nes)
		dbg.EnableTrace(f)
		run = func(ctx context.Context) {
			for nes.Powered() {
				select {
				case <-ctx.Done():
					return
				default:
					dbg.Step()
				}
			}
		}
	}

	w, h := nes.PPU().GetResolution()
	ebiten.SetWindowSize(w*2, h*2) // Start with 2x the screen size
	ebiten.SetWindowTitle(fmt.Sprintf("nescore - %s", rom))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	go run(ctx)

	if err := ebiten.RunGame(&game{host: host}); err != nil {
		log.Fatal(err)
	}

	cancel()
	os.Exit(0)
}
