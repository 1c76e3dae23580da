package device

// 12-bit words pack into sectors at 1½ bytes per word: word n occupies
// bytes 3n/2 and 3n/2+1. Even words take a whole byte plus the low nibble
// of the next; odd words take the high nibble of that shared byte plus the
// following whole byte.

// packWords packs ws into out. Bytes past the packed data are left as-is.
func packWords(ws []uint16, out []byte) {
	for n, w := range ws {
		b := 3 * n / 2
		if n%2 == 0 {
			out[b] = byte(w)
			out[b+1] = out[b+1]&0xF0 | byte(w>>8)&0x0F
		} else {
			out[b] = out[b]&0x0F | (byte(w>>8)&0x0F)<<4
			out[b+1] = byte(w)
		}
	}
}

// unpackWords extracts len(ws) packed words from in.
func unpackWords(in []byte, ws []uint16) {
	for n := range ws {
		b := 3 * n / 2
		if n%2 == 0 {
			ws[n] = uint16(in[b]) | uint16(in[b+1]&0x0F)<<8
		} else {
			ws[n] = uint16(in[b+1]) | uint16(in[b]>>4)<<8
		}
	}
}
