//go:build wasm

// Package guest is a sample cartridge compiled to Wasm by a separate
// TinyGo build step (tinygo build -target=wasi -o cartridge.wasm ./guest),
// not by this module's own go build. It exists so loadwasm has a
// realistic module to parse; it is not part of the loader's engineering
// surface.
package guest

import "unsafe"

const (
	fbWidth  = 800
	fbHeight = 600
)

//go:wasmimport env io_print_string
func vmPrint(ptr *byte, size int32)

//go:wasmimport env gfx_paint
func vmPaint(framebuffer *byte, width, height int32)

var xOffset, yOffset uint8

func printString(s string) {
	b := []byte(s)
	if len(b) == 0 {
		return
	}
	vmPrint(&b[0], int32(len(b)))
}

//go:wasmexport init
func initCartridge() *byte {
	printString("hello from init\n")
	buf := make([]byte, fbWidth*fbHeight*4)
	return &buf[0]
}

func fillFramebuffer(buf []byte, r, g, b, a byte) {
	color := uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
	words := unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), fbWidth*fbHeight)
	for i := range words {
		words[i] = color
	}
}

func drawRectangle(buf []byte, x, y, w, h uint32, r, g, b byte) {
	color := uint32(b)<<16 | uint32(g)<<8 | uint32(r)
	words := unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), fbWidth*fbHeight)
	for row := uint32(0); row < h; row++ {
		for col := uint32(0); col < w; col++ {
			words[(y+row)*fbWidth+(x+col)] = color
		}
	}
}

//go:wasmexport run
func run(framebuffer *byte, width, height int32) {
	buf := unsafe.Slice(framebuffer, fbWidth*fbHeight*4)
	fillFramebuffer(buf, 0, 200, 0, 0)
	drawRectangle(buf, 40, 40, 100, 100, 250, 50, 0)
	xOffset += 2
	yOffset += 2
	vmPaint(framebuffer, fbWidth, fbHeight)
}
