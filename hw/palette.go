package hw

import "image/color"

// Palette holds the 16 VIC-II colors (Pepto).
var Palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, // black
	{0xff, 0xff, 0xff, 0xff}, // white
	{0x68, 0x37, 0x2b, 0xff}, // red
	{0x70, 0xa4, 0xb2, 0xff}, // cyan
	{0x6f, 0x3d, 0x86, 0xff}, // purple
	{0x58, 0x8d, 0x43, 0xff}, // green
	{0x35, 0x28, 0x79, 0xff}, // blue
	{0xb8, 0xc7, 0x6f, 0xff}, // yellow
	{0x6f, 0x4f, 0x25, 0xff}, // orange
	{0x43, 0x39, 0x00, 0xff}, // brown
	{0x99, 0x67, 0x59, 0xff}, // light red
	{0x44, 0x44, 0x44, 0xff}, // dark grey
	{0x6c, 0x6c, 0x6c, 0xff}, // grey
	{0x9a, 0xd2, 0x84, 0xff}, // light green
	{0x6c, 0x5e, 0xb5, 0xff}, // light blue
	{0x95, 0x95, 0x95, 0xff}, // light grey
}

// ToRGBA converts a surface of palette indices into RGBA pixels. dst must hold
// 4 bytes per index.
func ToRGBA(dst []byte, src []uint8) {
	for i, idx := range src {
		c := Palette[idx&0x0f]
		dst[4*i+0] = c.R
		dst[4*i+1] = c.G
		dst[4*i+2] = c.B
		dst[4*i+3] = c.A
	}
}
