package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Urethramancer/pdp8/assembler"
	"github.com/Urethramancer/pdp8/cpu"
)

// The guest waits for the printer (LPSF skips while ready, which is
// always) and prints one character.
const lptProgram = `*0200
START,	CLA
	TAD KCH
LOOP,	LPSF
	JMP LOOP
	LPT
	HLT
KCH,	0110	/ "H"
$`

func TestLPTGuestPrint(t *testing.T) {
	p := NewLPT()
	path := filepath.Join(t.TempDir(), "spool.txt")
	if err := p.Attach(path); err != nil {
		t.Fatal(err)
	}
	defer p.Detach()

	prog, err := assembler.New().Assemble(lptProgram)
	if err != nil {
		t.Fatal(err)
	}
	c := cpu.New()
	if err := c.AddDevice(p); err != nil {
		t.Fatal(err)
	}
	for a, w := range prog.Words {
		if err := c.Write(int(a), w); err != nil {
			t.Fatal(err)
		}
	}
	c.SetPC(0200)
	if _, err := c.Run(1000); err != nil {
		t.Fatal(err)
	}
	if !c.Halt {
		t.Fatalf("guest did not halt, PC=%04o", c.PC)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "H" {
		t.Errorf("spool file = %q, want %q", out, "H")
	}
}

func TestLPTDetachedIsSilent(t *testing.T) {
	p := NewLPT()
	c := cpu.New()
	if err := c.AddDevice(p); err != nil {
		t.Fatal(err)
	}
	// LPT with no spool file attached is a no-op, not a fault.
	c.AC = 0101
	if err := p.IOT(iotLPT, c); err != nil {
		t.Fatal(err)
	}
}
