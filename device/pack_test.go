package device

import "testing"

func TestPackRoundTrip(t *testing.T) {
	for _, n := range []int{64, 128} {
		words := make([]uint16, n)
		for i := range words {
			words[i] = uint16(i*0123+041) & 07777
		}
		raw := make([]byte, n*2)
		packWords(words, raw)
		got := make([]uint16, n)
		unpackWords(raw, got)
		for i := range words {
			if got[i] != words[i] {
				t.Fatalf("word %d = %04o, want %04o", i, got[i], words[i])
			}
		}
	}
}

func TestPackLayout(t *testing.T) {
	// Even word: whole byte plus the low nibble of the shared byte.
	// Odd word: high nibble of the shared byte plus the next whole byte.
	words := []uint16{00123, 04567}
	raw := make([]byte, 3)
	packWords(words, raw)
	want := []byte{0x53, 0x90, 0x77}
	for i, b := range want {
		if raw[i] != b {
			t.Errorf("byte %d = %02X, want %02X", i, raw[i], b)
		}
	}
}
