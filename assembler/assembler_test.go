package assembler

import (
	"errors"
	"strings"
	"testing"

	"github.com/Urethramancer/pdp8/srec"
)

// assemble compiles source and fails the test on any error.
func assemble(t *testing.T, src string) *Program {
	t.Helper()
	p, err := New().Assemble(src)
	if err != nil {
		t.Fatalf("assemble failed: %v\n%s", err, src)
	}
	return p
}

// assembleAndMatch checks the full word map of a source fragment.
func assembleAndMatch(t *testing.T, name, src string, want map[uint16]uint16) {
	t.Helper()
	p := assemble(t, src)
	if len(p.Words) != len(want) {
		t.Fatalf("[%s] %d words assembled, want %d", name, len(p.Words), len(want))
	}
	for a, w := range want {
		if p.Words[a] != w {
			t.Errorf("[%s] word at %04o = %04o, want %04o", name, a, p.Words[a], w)
		}
	}
}

func TestBasicProgram(t *testing.T) {
	src := `*0200
START,	CLA CLL
	TAD A
	HLT
A,	0123
$`
	p := assemble(t, src)
	want := map[uint16]uint16{0200: 07300, 0201: 01203, 0202: 07402, 0203: 00123}
	for a, w := range want {
		if p.Words[a] != w {
			t.Errorf("word at %04o = %04o, want %04o", a, p.Words[a], w)
		}
	}
	if p.StartAddress() != 0200 {
		t.Errorf("start = %04o, want 0200", p.StartAddress())
	}
	if p.Symbols["A"] != 0203 {
		t.Errorf("A = %04o, want 0203", p.Symbols["A"])
	}
}

func TestOperateEncodings(t *testing.T) {
	tests := []struct {
		src  string
		want uint16
	}{
		{"NOP", 07000},
		{"IAC", 07001},
		{"CLA", 07200},
		{"CLA CLL", 07300},
		{"CMA", 07040},
		{"CIA", 07041},
		{"CMA IAC", 07041},
		{"RAR", 07010},
		{"RTR", 07012},
		{"RAL BSW", 07006},
		{"BSW", 07002},
		{"HLT", 07402},
		{"CLA HLT", 07602},
		{"SZA", 07440},
		{"SNA", 07450},
		{"SMA", 07500},
		{"SPA", 07510},
		{"SNL", 07420},
		{"SZL", 07430},
		{"SMA SZA", 07540},
		{"SZA CLA", 07640},
		{"OSR", 07404},
	}
	for _, tc := range tests {
		t.Run(strings.ReplaceAll(tc.src, " ", "_"), func(t *testing.T) {
			assembleAndMatch(t, tc.src, tc.src, map[uint16]uint16{0: tc.want})
		})
	}
}

func TestMemoryReference(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[uint16]uint16
	}{
		{
			"zero_page_from_other_page",
			"*0200\nTAD 0100",
			map[uint16]uint16{0200: 01100},
		},
		{
			"current_page",
			"*0400\nTAD 0477",
			map[uint16]uint16{0400: 01277},
		},
		{
			"indirect",
			"*0200\nPTR = 0012\nTAD I PTR",
			map[uint16]uint16{0200: 01412},
		},
		{
			"jmp_dot",
			"*0300\nJMP .",
			map[uint16]uint16{0300: 05300},
		},
		{
			"jmp_back",
			"*0300\nNOP\nJMP .-1",
			map[uint16]uint16{0300: 07000, 0301: 05300},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assembleAndMatch(t, tc.name, tc.src, tc.want)
		})
	}
}

func TestIOTMnemonics(t *testing.T) {
	assembleAndMatch(t, "iot", "KSF\nKRB\nTLS\nLPSF\nLCD\nDTLB", map[uint16]uint16{
		0: 06032, 1: 06036, 2: 06044, 3: 06602, 4: 06751, 5: 06766,
	})
}

func TestDataFormats(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want uint16
	}{
		{"octal", "0123", 00123},
		{"hex", "0x1FF", 00777},
		{"decimal", "#10", 00012},
		{"negative", "-1", 07777},
		{"negative_octal", "-17", 07761},
		{"char", "\"A\"", 00101},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assembleAndMatch(t, tc.name, tc.src, map[uint16]uint16{0: tc.want})
		})
	}
}

func TestText(t *testing.T) {
	assembleAndMatch(t, "text", "*0200\nTEXT \"AB\"", map[uint16]uint16{0200: 0101, 0201: 0102})
}

func TestDotEmitsAddress(t *testing.T) {
	assembleAndMatch(t, "dot", "*0340\n.", map[uint16]uint16{0340: 0340})
}

func TestSymbolValueOperand(t *testing.T) {
	assembleAndMatch(t, "amp", "*0200\nV = 0123\n&V", map[uint16]uint16{0200: 0123})
}

func TestCommentsAndSeparators(t *testing.T) {
	src := "*0200 / set origin\nCLA; IAC / two statements\n"
	assembleAndMatch(t, "comments", src, map[uint16]uint16{0200: 07200, 0201: 07001})
}

func TestLabelForwardReference(t *testing.T) {
	src := "*0200\nJMP L\nL, HLT"
	assembleAndMatch(t, "forward", src, map[uint16]uint16{0200: 05201, 0201: 07402})
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"duplicate_label", "A, 0\nA, 1", ErrDuplicateLabel},
		{"unknown_symbol", "TAD NOWHERE", ErrUnknownSymbol},
		{"page_crossing", "*0200\nTAD 0500", ErrOperandOutOfRange},
		{"missing_operand", "TAD", ErrMissingOperand},
		{"bad_origin", "*", ErrBadOrigin},
		{"bad_origin_value", "*XYZZY", ErrBadOrigin},
		{"invalid_operate", "CLA FROB", ErrInvalidOperate},
		{"mixed_groups", "RAL HLT", ErrInvalidOperate},
		{"bad_char", "TEXT \"unterminated", ErrMalformedCharLiteral},
		{"empty", "/ nothing here\n", ErrEmptyProgram},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().Assemble(tc.src)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPass2ErrorsCollect(t *testing.T) {
	src := "*0200\nTAD NOWHERE\nTAD 0500\nHLT"
	p, err := New().Assemble(src)
	if err == nil {
		t.Fatal("expected an error")
	}
	if p == nil {
		t.Fatal("program should still be returned for listing")
	}
	if len(p.Errs) != 2 {
		t.Fatalf("%d errors collected, want 2", len(p.Errs))
	}
	if p.Words[0202] != 07402 {
		t.Errorf("clean statements should still assemble, got %04o", p.Words[0202])
	}
	var le *LineError
	if !errors.As(err, &le) || le.Line != 2 {
		t.Errorf("first error should carry line 2, got %v", err)
	}
}

func TestSRecordRoundTrip(t *testing.T) {
	src := `*0200
START,	CLA CLL
	TAD A
	HLT
A,	0123`
	p := assemble(t, src)
	bytes, start, err := srec.Decode(p.SRecords())
	if err != nil {
		t.Fatal(err)
	}
	if start == nil || *start != 0200 {
		t.Fatalf("start = %v, want 0200", start)
	}
	words := srec.Words(bytes)
	if len(words) != len(p.Words) {
		t.Fatalf("%d words decoded, want %d", len(words), len(p.Words))
	}
	for a, w := range p.Words {
		if words[a] != w {
			t.Errorf("word at %04o = %04o, want %04o", a, words[a], w)
		}
	}
}

func TestListing(t *testing.T) {
	p := assemble(t, "*0200\nSTART, CLA CLL\nHLT")
	var b strings.Builder
	p.Listing(&b)
	out := b.String()
	for _, want := range []string{"0200  7300", "CLA CLL", "0201  7402", "2 words, 0 errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}
