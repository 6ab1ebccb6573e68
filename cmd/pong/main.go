package main

import (
	"flag"
	"log"
	"os"

	"github.com/bwalton/nescore/mos6502"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	romFile   = flag.String("rom", "", "Path to the Pong program image.")
	verbose   = flag.Bool("verbose", false, "Log bus faults to stderr.")
	debugFlag = flag.Bool("debug", false, "Panic on an unimplemented opcode instead of treating it as a NOP.")
	scale     = 4
)

// pongGame drives the CPU up to instructionsPerFrame instructions per
// Update call, stopping early once the program flushes a frame - unlike
// cmd/gintendo there's no PPU or fixed dot ratio to hold it to, so ebiten's
// own 60Hz callback is the machine's clock here.
type pongGame struct {
	cpu  *mos6502.CPU
	disp *display
	img  *ebiten.Image
}

func (g *pongGame) Update() error {
	const instructionsPerFrame = 2000
	for i := 0; i < instructionsPerFrame; i++ {
		g.cpu.Step()
		if g.disp.consumeUpdated() {
			break
		}
	}
	return nil
}

func (g *pongGame) Draw(screen *ebiten.Image) {
	pix := make([]byte, displayWidth*displayHeight*4)
	for i, idx := range g.disp.buffer {
		o := i * 4
		// 1-bit-per-pixel color port: 0 is black, anything else white,
		// matching the demo program's on/off paddle-and-ball rendering.
		v := byte(0)
		if idx != 0 {
			v = 0xff
		}
		pix[o], pix[o+1], pix[o+2], pix[o+3] = v, v, v, 0xff
	}
	g.img.WritePixels(pix)
	screen.DrawImage(g.img, nil)
}

func (g *pongGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return displayWidth, displayHeight
}

func main() {
	flag.Parse()
	mos6502.Debug = *debugFlag

	rom, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("couldn't read ROM %s: %v", *romFile, err)
	}

	disp := &display{}
	bus := newPongBus(rom, disp)
	bus.verbose = *verbose
	cpu := mos6502.New(bus)
	cpu.Reset()

	ebiten.SetWindowSize(displayWidth*scale, displayHeight*scale)
	ebiten.SetWindowTitle("pong")

	game := &pongGame{cpu: cpu, disp: disp, img: ebiten.NewImage(displayWidth, displayHeight)}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
