package hw

import (
	"sixtyfour/emu/log"
	"sixtyfour/hw/hwio"
)

const (
	NumLines           = 312 // Number of raster lines per frame.
	FirstVisibleLine   = 50  // First line of the display window.
	FirstInvisibleLine = 250 // First line after the display window.
	CyclesPerLine      = 63  // Number of CPU cycles per raster line.

	ScreenWidth  = 320
	ScreenHeight = 200
)

const (
	// $D011 (control register 1)
	yscrollMask = 0b111
	rsel        = 1 << 3 // 25 rows (0: 24 rows)
	den         = 1 << 4 // display enable
	bmm         = 1 << 5 // bitmap mode
	ecm         = 1 << 6 // extended background color mode

	// $D016 (control register 2)
	xscrollMask = 0b111
	csel        = 1 << 3 // 40 columns (0: 38 columns)
	mcm         = 1 << 4 // multicolor mode
)

// Horizontal border, in 38 columns mode.
const (
	hborderLeft  = 7
	hborderRight = 311
)

const (
	spriteLines = 21 // lines per sprite
	spriteBytes = 3  // bytes per sprite line
)

type VICConfig struct {
	// RefetchEveryLine re-reads screen codes and colors on every line of a
	// character row, instead of only on badlines. Some scrollers change screen
	// memory in the middle of a row and rely on it.
	RefetchEveryLine bool `toml:"refetch_every_line"`
}

// VIC renders the display window, one raster line at a time, into a surface of
// palette indices.
type VIC struct {
	bus *hwio.Bus
	cfg VICConfig

	front, back []uint8

	lineChars  [40]uint8
	lineColors [40]uint8

	line           int // line in the display window
	nextBadline    int
	charRow        int // next character row to fetch
	currentCharRow int
	bitmapRow      int
	idle           bool

	spriteActive [8]bool
	spriteRow    [8]uint8

	badlines int // badlines in the current frame
}

func NewVIC(bus *hwio.Bus, cfg VICConfig) *VIC {
	return &VIC{
		bus:   bus,
		cfg:   cfg,
		front: make([]uint8, ScreenWidth*ScreenHeight),
		back:  make([]uint8, ScreenWidth*ScreenHeight),
		idle:  true,
	}
}

// BeginFrame must be called just before the first visible line.
func (v *VIC) BeginFrame() {
	v.line = 0
	v.nextBadline = 0
	v.charRow = 0
	v.currentCharRow = 0
	v.bitmapRow = 0
	v.idle = true
	v.badlines = 0
	v.spriteActive = [8]bool{}
}

// EndFrame makes the frame rendered since BeginFrame the current one.
func (v *VIC) EndFrame() {
	v.front, v.back = v.back, v.front
}

// Frame returns the last complete frame, as ScreenWidth*ScreenHeight palette
// indices. The slice is only valid until the next call to EndFrame.
func (v *VIC) Frame() []uint8 {
	return v.front
}

// RGBA converts the last complete frame to RGBA pixels into dst, which must
// hold 4*ScreenWidth*ScreenHeight bytes.
func (v *VIC) RGBA(dst []byte) {
	ToRGBA(dst, v.front)
}

// Line returns the number of lines rendered in the current frame.
func (v *VIC) Line() int {
	return v.line
}

func (v *VIC) reg(addr uint16) uint8 {
	return v.bus.ReadIO(addr, false)
}

// lineRegs holds the registers values used to render a line.
type lineRegs struct {
	yscroll, xscroll int

	den, bmm, ecm, mcm bool
	rsel, csel         bool

	bank, chars, bitmap, screen uint16

	border uint8
	bg     [4]uint8 // $D021-$D024
}

func (v *VIC) readRegs() lineRegs {
	ctrl1 := v.reg(0xD011)
	ctrl2 := v.reg(0xD016)
	mem := uint16(v.reg(0xD018))

	r := lineRegs{
		yscroll: int(ctrl1 & yscrollMask),
		xscroll: int(ctrl2 & xscrollMask),
		den:     ctrl1&den != 0,
		bmm:     ctrl1&bmm != 0,
		ecm:     ctrl1&ecm != 0,
		mcm:     ctrl2&mcm != 0,
		rsel:    ctrl1&rsel != 0,
		csel:    ctrl2&csel != 0,
		border:  v.reg(0xD020) & 0x0f,
	}
	r.bank = 0xC000 - uint16(v.reg(0xDD00)&3)*0x4000
	r.chars = r.bank + (mem&0x0E)*0x400
	r.bitmap = r.bank + (mem&0x08)*0x400
	r.screen = r.bank + (mem&0xF0)*0x40
	for i := range r.bg {
		r.bg[i] = v.reg(0xD021+uint16(i)) & 0x0f
	}
	return r
}

func (v *VIC) isBadline(yscroll int) bool {
	row := (v.line + 3) & 7
	return (v.line == 0 && row >= yscroll) || (row == yscroll && v.line >= v.nextBadline)
}

func (v *VIC) doBadline(r *lineRegs) {
	v.currentCharRow = v.charRow
	if v.charRow >= 25 {
		v.idle = true
		return
	}

	v.idle = false
	v.bitmapRow = v.charRow
	v.nextBadline = (v.charRow+1)*8 + r.yscroll - 3
	v.charRow++
	v.badlines++
	v.fetchRow(r)

	log.ModVIC.DebugZ("badline").
		Int("line", v.line).
		Int("row", v.currentCharRow).
		End()
}

// fetchRow copies the screen codes and colors of the current character row.
func (v *VIC) fetchRow(r *lineRegs) {
	off := uint16(v.currentCharRow * 40)
	for i := range uint16(40) {
		v.lineChars[i] = v.bus.ReadRAM(r.screen + off + i)
		v.lineColors[i] = v.bus.ReadIO(0xD800+off+i, false) & 0x0f
	}
}

// RenderLine renders the next line of the display window. It does nothing
// once the whole window has been rendered.
func (v *VIC) RenderLine() {
	if v.line >= ScreenHeight {
		return
	}

	r := v.readRegs()
	if v.isBadline(r.yscroll) {
		v.doBadline(&r)
	} else if v.cfg.RefetchEveryLine && !v.idle {
		v.fetchRow(&r)
	}

	px := v.back[v.line*ScreenWidth : (v.line+1)*ScreenWidth]

	drawSprites := true
	switch {
	case !r.den || (!r.rsel && (v.line < 4 || v.line >= 196)):
		// Vertical border or display disabled.
		fill(px, r.border)
		drawSprites = false
	case v.idle || (r.ecm && r.mcm):
		// Idle state or invalid mode.
		fill(px, 0)
	default:
		v.drawGraphics(px, &r)
	}

	v.updateSprites(px, &r, drawSprites)
	v.line++
}

func fill(px []uint8, c uint8) {
	for i := range px {
		px[i] = c
	}
}

// graphics byte for column col, in the current mode.
func (v *VIC) graphicsByte(r *lineRegs, col, charLine int) uint8 {
	if r.bmm {
		return v.bus.ReadRAM(r.bitmap + uint16(v.bitmapRow*320+col*8+charLine))
	}
	code := uint16(v.lineChars[col])
	if r.ecm {
		code &= 0x3f
	}
	return v.bus.ReadRAM(r.chars + code*8 + uint16(charLine))
}

func (v *VIC) drawGraphics(px []uint8, r *lineRegs) {
	charLine := (v.line + 3 - r.yscroll) & 7

	// Pixels for which bit is above $80 are the ones shifted in by the
	// horizontal scroll, they show the background.
	bit := 0x80 << r.xscroll
	pairShift := 7 + r.xscroll
	col := 0
	data := v.graphicsByte(r, col, charLine)
	hborder := !r.csel

	for x := range px {
		code := v.lineChars[min(col, 39)]
		color := v.lineColors[min(col, 39)]

		switch {
		case hborder && (x < hborderLeft || x >= hborderRight):
			px[x] = r.border

		case !r.bmm && !r.mcm:
			// Hires text.
			switch {
			case bit <= 0x80 && data&uint8(bit) != 0:
				px[x] = color
			case r.ecm:
				px[x] = r.bg[code>>6]
			default:
				px[x] = r.bg[0]
			}

		case bit > 0x80 || data == 0:
			px[x] = r.bg[0]

		case !r.bmm:
			// Multicolor text, colors below 8 show a hires character.
			if color < 8 {
				if data&uint8(bit) != 0 {
					px[x] = color
				} else {
					px[x] = r.bg[0]
				}
				break
			}
			switch (data >> (pairShift & 6)) & 3 {
			case 0:
				px[x] = r.bg[0]
			case 1:
				px[x] = r.bg[1]
			case 2:
				px[x] = r.bg[2]
			case 3:
				px[x] = color & 7
			}

		case !r.mcm:
			// Hires bitmap.
			if data&uint8(bit) != 0 {
				px[x] = code >> 4
			} else {
				px[x] = code & 0x0f
			}

		default:
			// Multicolor bitmap.
			switch (data >> (pairShift & 6)) & 3 {
			case 0:
				px[x] = r.bg[0]
			case 1:
				px[x] = code >> 4
			case 2:
				px[x] = code & 0x0f
			case 3:
				px[x] = color
			}
		}

		bit >>= 1
		pairShift--
		if bit == 0 {
			bit = 0x80
			pairShift = 7
			col++
			if col < 40 {
				data = v.graphicsByte(r, col, charLine)
			}
		}
	}
}

func (v *VIC) updateSprites(px []uint8, r *lineRegs, draw bool) {
	enabled := v.reg(0xD015)
	multicolor := v.reg(0xD01C)
	xmsb := v.reg(0xD010)
	xexpand := v.reg(0xD01D)
	mc1 := v.reg(0xD025) & 0x0f
	mc2 := v.reg(0xD026) & 0x0f
	hborder := !r.csel

	// Sprite 0 has the highest priority, so it's drawn last.
	for i := 7; i >= 0; i-- {
		n := uint(i)
		y := int(v.reg(0xD001 + 2*uint16(i)))
		if !v.spriteActive[i] && hwio.GetBit8(enabled, n) {
			if v.line == y-FirstVisibleLine || (v.line == 0 && y >= 30 && y < FirstVisibleLine) {
				v.spriteActive[i] = true
				v.spriteRow[i] = uint8(v.line + FirstVisibleLine - y)
			}
		}

		if !v.spriteActive[i] {
			continue
		}

		if draw {
			x := int(v.reg(0xD000 + 2*uint16(i)))
			if hwio.GetBit8(xmsb, n) {
				x += 256
			}
			expand := hwio.GetBit8(xexpand, n)
			if expand && x >= 480 && x < 504 {
				x -= 504
			}
			width := 1
			if expand {
				width = 2
			}

			ptr := uint16(v.bus.ReadRAM(r.screen + 0x3F8 + uint16(i)))
			addr := r.bank + ptr*64 + uint16(v.spriteRow[i])*spriteBytes
			color := v.reg(0xD027+uint16(i)) & 0x0f
			mc := hwio.GetBit8(multicolor, n)

			for j := range 24 {
				k := x + j*width - 24
				b := v.bus.ReadRAM(addr + uint16(j>>3))

				for range width {
					if k >= 0 && k < ScreenWidth && (!hborder || (k >= hborderLeft && k < hborderRight)) && b != 0 {
						if mc {
							switch (b >> (6 - (j & 6))) & 3 {
							case 1:
								px[k] = mc1
							case 2:
								px[k] = color
							case 3:
								px[k] = mc2
							}
						} else if b&(0x80>>(j&7)) != 0 {
							px[k] = color
						}
					}
					k++
				}
			}
		}

		v.spriteRow[i]++
		if v.spriteRow[i] >= spriteLines {
			v.spriteActive[i] = false
		}
	}
}
