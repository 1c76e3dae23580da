package cpu

import "fmt"

// WordMask keeps values inside the 12-bit word range.
const WordMask = 07777

// Mask returns the lower 12 bits of a value.
func Mask(w uint16) uint16 {
	return w & WordMask
}

// Octal formats a word as four octal digits, the notation used by every
// front panel, listing and image file in this package.
func Octal(w uint16) string {
	return fmt.Sprintf("%04o", w)
}

// linkWord packs the link bit and accumulator into a 13-bit value for the
// rotate instructions.
func linkWord(l, ac uint16) uint16 {
	return (l&1)<<12 | Mask(ac)
}

// rotateLeft rotates the combined 13-bit link/accumulator left one place.
func rotateLeft(l, ac uint16) (uint16, uint16) {
	t := linkWord(l, ac)
	t = ((t << 1) | (t >> 12)) & 017777
	return t >> 12, Mask(t)
}

// rotateRight rotates the combined 13-bit link/accumulator right one place.
func rotateRight(l, ac uint16) (uint16, uint16) {
	t := linkWord(l, ac)
	t = ((t >> 1) | (t << 12)) & 017777
	return t >> 12, Mask(t)
}

// swapHalves exchanges the two 6-bit halves of a word.
func swapHalves(w uint16) uint16 {
	return (w>>6)&077 | (w<<6)&07700
}
