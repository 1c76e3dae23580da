package srec

import (
	"errors"
	"testing"
)

func TestEncodeKnown(t *testing.T) {
	words := map[uint16]uint16{0200: 07300, 0201: 01007, 0202: 07402}
	lines := Encode(words, 0200)
	want := []string{
		"S1090100C00E0702020F0D",
		"S9030100FB",
	}
	if len(lines) != len(want) {
		t.Fatalf("%d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	words := make(map[uint16]uint16)
	// A long contiguous run to force multiple records plus a stray word.
	for i := uint16(0); i < 40; i++ {
		words[0200+i] = 07000 | i
	}
	words[04000] = 01234

	lines := Encode(words, 0200)
	bytes, start, err := Decode(lines)
	if err != nil {
		t.Fatal(err)
	}
	if start == nil || *start != 0200 {
		t.Fatalf("start = %v, want 0200", start)
	}
	got := Words(bytes)
	if len(got) != len(words) {
		t.Fatalf("%d words, want %d", len(got), len(words))
	}
	for a, w := range words {
		if got[a] != w {
			t.Errorf("word at %04o = %04o, want %04o", a, got[a], w)
		}
	}
}

func TestRecordLength(t *testing.T) {
	words := make(map[uint16]uint16)
	for i := uint16(0); i < 64; i++ {
		words[i] = 01111
	}
	for _, line := range Encode(words, 0) {
		if len(line) > 2+2+4+2*maxDataBytes+2 {
			t.Errorf("record too long: %s", line)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"bad_checksum", "S1090100C00E0702020F0E", ErrInvalidChecksum},
		{"truncated", "S1090100C00E", ErrTruncatedRecord},
		{"not_a_record", "Q1090100C0", ErrMalformedSRecord},
		{"bad_kind", "S5030000FC", ErrMalformedSRecord},
		{"bad_hex", "S103zz00FC", ErrMalformedSRecord},
		{"short_count", "S1020000FD", ErrMalformedSRecord},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode([]string{tc.line})
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"S1090100C00E0702020E0E\n", true},
		{"\n  \nS9030100FB", true},
		{"0200: 7300 1203", false},
		{"Sorry, not an image", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsImage(tc.text); got != tc.want {
			t.Errorf("IsImage(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestWordsFoldsNibbles(t *testing.T) {
	bytes := map[int]byte{0x100: 0xC0, 0x101: 0x0E}
	words := Words(bytes)
	if words[0200] != 07300 {
		t.Errorf("word = %04o, want 7300", words[0200])
	}
}
