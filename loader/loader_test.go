package loader

import (
	"strings"
	"testing"

	"github.com/Urethramancer/pdp8/cpu"
	"github.com/Urethramancer/pdp8/srec"
)

func TestLoadOctalTokens(t *testing.T) {
	c := cpu.New()
	text := `
@0200 7300 1203 ; deposit three words
7402
0300: 1111 2222  # new load address
0377:4444
5555
`
	if err := Load(c, text); err != nil {
		t.Fatal(err)
	}
	want := map[int]uint16{
		0200: 07300, 0201: 01203, 0202: 07402,
		0300: 01111, 0301: 02222,
		0377: 04444, 0400: 05555,
	}
	for a, w := range want {
		if c.Mem[a] != w {
			t.Errorf("mem[%04o] = %04o, want %04o", a, c.Mem[a], w)
		}
	}
}

func TestLoadAddressWraps(t *testing.T) {
	c := cpu.New()
	if err := Load(c, "@7777 1111 2222"); err != nil {
		t.Fatal(err)
	}
	if c.Mem[07777] != 01111 || c.Mem[0] != 02222 {
		t.Error("load address should wrap around core")
	}
}

func TestLoadBadToken(t *testing.T) {
	c := cpu.New()
	if err := Load(c, "@0200 89"); err == nil {
		t.Fatal("expected an error for a non-octal token")
	}
}

func TestLoadSRecordsSetsPC(t *testing.T) {
	words := map[uint16]uint16{0200: 07300, 0201: 07402}
	text := strings.Join(srec.Encode(words, 0200), "\n")
	c := cpu.New()
	if err := Load(c, text); err != nil {
		t.Fatal(err)
	}
	if c.Mem[0200] != 07300 || c.Mem[0201] != 07402 {
		t.Error("S-record words not loaded")
	}
	if c.PC != 0200 {
		t.Errorf("PC = %04o, want 0200", c.PC)
	}
}

func TestSaveImageRoundTrip(t *testing.T) {
	c := cpu.New()
	c.Mem[0200] = 07300
	c.Mem[0207] = 01234
	c.Mem[04000] = 00001

	var b strings.Builder
	if err := SaveImage(c, &b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if strings.Contains(out, "0000:") {
		t.Error("all-zero rows should be omitted")
	}

	c2 := cpu.New()
	if err := Load(c2, out); err != nil {
		t.Fatal(err)
	}
	for a := 0; a < cpu.MemSize; a++ {
		if c2.Mem[a] != c.Mem[a] {
			t.Fatalf("mem[%04o] = %04o, want %04o", a, c2.Mem[a], c.Mem[a])
		}
	}
}
