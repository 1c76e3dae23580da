// Package assembler implements a two-pass assembler for PAL, the PDP-8
// assembly language. Pass 1 resolves origins and labels and queues tagged
// statements; pass 2 encodes each statement into a 12-bit word.
package assembler

import (
	"fmt"
	"os"
	"strings"

	"github.com/Urethramancer/pdp8/srec"
)

// Assembler holds the state for one assembly.
type Assembler struct {
	symbols    map[string]uint16
	origins    []uint16
	statements []*Statement
	lc         uint16
}

// New creates a new Assembler instance.
func New() *Assembler {
	return &Assembler{
		symbols: make(map[string]uint16),
	}
}

// Program is the result of an assembly: the word map, the symbol table and
// the statements that produced them. Errs holds pass 2 errors; the word
// map covers everything that still encoded cleanly.
type Program struct {
	Words      map[uint16]uint16
	Symbols    map[string]uint16
	Origins    []uint16
	Statements []*Statement
	Errs       []*LineError
}

// Assemble runs both passes over PAL source. Pass 1 errors are returned
// immediately; pass 2 errors are collected into the program so a listing
// can still be produced, and the first one is returned.
func (a *Assembler) Assemble(src string) (*Program, error) {
	if err := a.pass1(src); err != nil {
		return nil, err
	}
	if len(a.statements) == 0 {
		return nil, ErrEmptyProgram
	}

	p := &Program{
		Words:      make(map[uint16]uint16, len(a.statements)),
		Symbols:    a.symbols,
		Origins:    a.origins,
		Statements: a.statements,
	}
	for _, s := range a.statements {
		w, err := a.encode(s)
		if err != nil {
			p.Errs = append(p.Errs, lineErr(s.Line, s.Source, err))
			continue
		}
		p.Words[s.Addr] = w
	}
	if len(p.Errs) > 0 {
		return p, p.Errs[0]
	}
	return p, nil
}

// encode produces the word for one pass 1 statement.
func (a *Assembler) encode(s *Statement) (uint16, error) {
	switch s.Kind {
	case StmtData, StmtIOT:
		return s.Word, nil
	case StmtAddress:
		return s.Addr, nil
	case StmtDataSymbol:
		return a.eval(s.Operand, s.Addr)
	case StmtMem:
		return a.encodeMem(s)
	case StmtOperate:
		return encodeOperate(s.Tokens)
	}
	return 0, ErrInvalidOperate
}

// encodeMem resolves a memory-reference operand and checks that it is
// reachable: page zero, or the statement's own page.
func (a *Assembler) encodeMem(s *Statement) (uint16, error) {
	target, err := a.eval(s.Operand, s.Addr)
	if err != nil {
		return 0, err
	}
	w := s.Opcode | target&0177
	if s.Indirect {
		w |= 0400
	}
	switch {
	case target < 0200:
		// Page zero.
	case target&07600 == s.Addr&07600:
		w |= 0200
	default:
		return 0, fmt.Errorf("%w: %04o from %04o", ErrOperandOutOfRange, target, s.Addr)
	}
	return w, nil
}

// encodeOperate classifies an operate token list as group 1 or group 2 and
// ORs the mnemonic bits onto the group base. The statement is group 2 iff
// some token is a group 2 mnemonic and the tokens are not all group 1.
func encodeOperate(tokens []string) (uint16, error) {
	allGroup1 := true
	anyGroup2 := false
	for _, t := range tokens {
		tu := strings.ToUpper(t)
		_, g1 := group1Bits[tu]
		_, g2 := group2Bits[tu]
		if !g1 && !g2 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidOperate, t)
		}
		if !g1 {
			allGroup1 = false
		}
		if g2 {
			anyGroup2 = true
		}
	}
	if anyGroup2 && !allGroup1 {
		w := uint16(07400)
		for _, t := range tokens {
			bits, ok := group2Bits[strings.ToUpper(t)]
			if !ok {
				return 0, fmt.Errorf("%w: %s is not a group 2 mnemonic", ErrInvalidOperate, t)
			}
			w |= bits
		}
		return w, nil
	}
	w := uint16(07000)
	for _, t := range tokens {
		w |= group1Bits[strings.ToUpper(t)]
	}
	return w, nil
}

// StartAddress is the S9 start record address: the assembled value of the
// symbol START if defined, otherwise the minimum populated address.
func (p *Program) StartAddress() uint16 {
	if v, ok := p.Symbols["START"]; ok {
		return v
	}
	min := uint16(07777)
	first := true
	for a := range p.Words {
		if first || a < min {
			min = a
			first = false
		}
	}
	return min
}

// SRecords emits the assembled image as S1 records with an S9 terminator.
func (p *Program) SRecords() []string {
	return srec.Encode(p.Words, p.StartAddress())
}

// AssembleFile assembles a source file and writes the S-record output.
func AssembleFile(path, out string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := New().Assemble(string(data))
	if err != nil {
		return p, err
	}
	text := ""
	for _, line := range p.SRecords() {
		text += line + "\n"
	}
	return p, os.WriteFile(out, []byte(text), 0644)
}
