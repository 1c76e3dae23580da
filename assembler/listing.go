package assembler

import (
	"fmt"
	"io"

	"github.com/Urethramancer/pdp8/cpu"
)

// Listing renders each statement with its address, assembled word and
// mnemonic rendering next to the source text, then a totals line and any
// errors collected during pass 2.
func (p *Program) Listing(w io.Writer) {
	for _, s := range p.Statements {
		word, ok := p.Words[s.Addr]
		if !ok {
			fmt.Fprintf(w, "%04o  ????  %-20s  %s\n", s.Addr, "", s.Source)
			continue
		}
		fmt.Fprintf(w, "%04o  %04o  %-20s  %s\n", s.Addr, word, cpu.Disassemble(s.Addr, word), s.Source)
	}
	fmt.Fprintf(w, "\n%d words, %d errors\n", len(p.Words), len(p.Errs))
	for _, e := range p.Errs {
		fmt.Fprintf(w, "%v\n", e)
	}
}
