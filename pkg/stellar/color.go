package stellar

import "image/color"

// DefaultColorOffset shifts temperatures down before the table lookup. Even
// the coolest stars are hotter than the table's first entry, so the offset
// stretches the usable range towards red.
const DefaultColorOffset = 1.0

// colorTable maps whole thousands of kelvin (after the offset) to RGB, from
// roughly 1500K to 15000K. Some entries are duplicated by hand to widen the
// white band.
var colorTable = [...]color.RGBA{
	{255, 140, 50, 255},
	{255, 143, 55, 255},
	{255, 158, 79, 255},
	{255, 177, 110, 255},
	{255, 206, 166, 255},
	{255, 215, 182, 255},
	{255, 228, 206, 255},
	{255, 255, 245, 255},
	{255, 255, 255, 255},
	{255, 255, 255, 255},
	{255, 255, 255, 255},
	{255, 255, 255, 255},
	{243, 242, 255, 255},
	{221, 231, 255, 255},
	{210, 223, 255, 255},
	{196, 214, 255, 255},
	{191, 211, 255, 255},
	{202, 218, 255, 255},
	{185, 207, 255, 255},
	{179, 202, 255, 255},
	{171, 195, 255, 255},
	{151, 175, 255, 255},
}

// ColorTableLen is the number of entries in the temperature color table.
const ColorTableLen = len(colorTable)

// Color returns the display color of a star with temperature temp (thousands
// of kelvin). Values below the table clip to the reddest entry and values
// past its end clip to the bluest.
func Color(temp, offset float64) color.RGBA {
	idx := temp - offset
	switch {
	case idx != idx || idx < 0:
		idx = 0
	case idx > float64(ColorTableLen-1):
		idx = float64(ColorTableLen - 1)
	}
	return colorTable[int(idx)]
}
