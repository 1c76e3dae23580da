package cpu

import (
	"fmt"
	"strings"
)

var memMnemonics = []string{"AND", "TAD", "ISZ", "DCA", "JMS", "JMP"}

var iotMnemonics = map[uint16]string{
	06031: "KCF", 06032: "KSF", 06034: "KRS", 06036: "KRB",
	06041: "TCF", 06042: "TSF", 06044: "TLS", 06046: "TLSC",
	06601: "LPCF", 06602: "LPSF", 06604: "LPT", 06606: "LPTC",
	06751: "LCD", 06752: "XDR", 06753: "STR", 06754: "SER",
	06755: "SDN", 06756: "INTR", 06757: "INIT",
	06762: "DTCA", 06764: "DTSF", 06766: "DTLB", 06771: "DTXA",
}

// Disassemble renders one instruction word as PAL-style text. The address
// is needed to resolve current-page operands.
func Disassemble(addr, w uint16) string {
	op := w >> 9
	if op < 6 {
		ea := w & offsetMask
		if w&bitPage != 0 {
			ea |= addr & pageMask
		}
		if w&bitIndirect != 0 {
			return fmt.Sprintf("%s I %04o", memMnemonics[op], ea)
		}
		return fmt.Sprintf("%s %04o", memMnemonics[op], ea)
	}
	if op == opIOT {
		if name, ok := iotMnemonics[w]; ok {
			return name
		}
		return fmt.Sprintf("IOT %04o", w)
	}
	return disassembleOperate(w)
}

func disassembleOperate(w uint16) string {
	var parts []string
	add := func(bit uint16, name string) {
		if w&bit != 0 {
			parts = append(parts, name)
		}
	}
	switch {
	case w&0400 == 0: // group 1
		if w == 07000 {
			return "NOP"
		}
		add(0200, "CLA")
		add(0100, "CLL")
		add(0040, "CMA")
		add(0020, "CML")
		switch w & 0016 {
		case 0012:
			parts = append(parts, "RTR")
		case 0010:
			parts = append(parts, "RAR")
		case 0006:
			parts = append(parts, "RTL")
		case 0004:
			parts = append(parts, "RAL")
		case 0002:
			parts = append(parts, "BSW")
		}
		add(0001, "IAC")
	case w&0001 == 0: // group 2
		add(0100, "SMA")
		add(0040, "SZA")
		add(0020, "SNL")
		add(0200, "CLA")
		add(0004, "OSR")
		add(0002, "HLT")
	default: // group 3
		add(0200, "CLA")
		add(0100, "MQA")
		add(0020, "MQL")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("OPR %04o", w)
	}
	return strings.Join(parts, " ")
}
