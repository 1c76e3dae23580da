// Package linker composes assembled library routines into a single ROM
// image and patches LINK placeholders in application source against the
// resulting symbol table.
package linker

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Urethramancer/pdp8/assembler"
	"github.com/Urethramancer/pdp8/srec"
)

// Linker errors.
var (
	ErrOriginNotAllowed       = errors.New("origin directive not allowed in library routine")
	ErrNotPositionIndependent = errors.New("routine is not position independent")
	ErrRoutineTooLarge        = errors.New("routine larger than a page")
	ErrMemoryOverlap          = errors.New("memory overlap")
	ErrDuplicateSymbol        = errors.New("duplicate symbol")
	ErrUnknownLinkSymbol      = errors.New("unknown link symbol")
)

// Default packing geometry.
const (
	DefaultBase     = 0200
	DefaultPageSize = 0200
)

// BuildLib assembles each library source, packs the routines onto pages
// starting at base, and writes the combined S-record ROM and symbol file.
func BuildLib(files []string, base, pageSize uint16, outROM, outSym string) error {
	if base == 0 {
		base = DefaultBase
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	words := make(map[uint16]uint16)
	symbols := make(map[string]uint16)
	pageBase := base
	offset := uint16(0)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("buildlib %s: %w", file, err)
		}
		src := string(data)

		size, err := routineSize(src)
		if err != nil {
			return fmt.Errorf("buildlib %s: %w", file, err)
		}
		if size > pageSize {
			return fmt.Errorf("buildlib %s: %d words: %w", file, size, ErrRoutineTooLarge)
		}
		if offset+size > pageSize {
			pageBase += pageSize
			offset = 0
		}

		// Reassemble with a synthetic origin at the packing position.
		placed := fmt.Sprintf("*%04o\n%s", pageBase+offset, src)
		p, err := assembler.New().Assemble(placed)
		if err != nil {
			return fmt.Errorf("buildlib %s: %w", file, err)
		}
		if err := mergeWords(words, p.Words); err != nil {
			return fmt.Errorf("buildlib %s: %w", file, err)
		}
		if err := mergeSymbols(symbols, p.Symbols); err != nil {
			return fmt.Errorf("buildlib %s: %w", file, err)
		}
		offset += size
	}

	if err := writeROM(outROM, words, base); err != nil {
		return err
	}
	return writeSymbolFile(outSym, symbols)
}

// writeROM emits a word map as S-records with the given start address.
func writeROM(path string, words map[uint16]uint16, start uint16) error {
	var b strings.Builder
	for _, line := range srec.Encode(words, start) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// routineSize assembles a routine at origin zero to measure it, rejecting
// sources that set their own origin or do not start at zero.
func routineSize(src string) (uint16, error) {
	p, err := assembler.New().Assemble(src)
	if err != nil {
		return 0, err
	}
	if len(p.Origins) > 0 {
		return 0, ErrOriginNotAllowed
	}
	min, max := uint16(07777), uint16(0)
	for a := range p.Words {
		if a < min {
			min = a
		}
		if a > max {
			max = a
		}
	}
	if min != 0 {
		return 0, fmt.Errorf("%w: first word at %04o", ErrNotPositionIndependent, min)
	}
	return max + 1, nil
}

func mergeWords(dst, src map[uint16]uint16) error {
	for a, w := range src {
		if have, ok := dst[a]; ok && have != w {
			return fmt.Errorf("%w at %04o: %04o vs %04o", ErrMemoryOverlap, a, have, w)
		}
		dst[a] = w
	}
	return nil
}

func mergeSymbols(dst, src map[string]uint16) error {
	for n, v := range src {
		if have, ok := dst[n]; ok && have != v {
			return fmt.Errorf("%w: %s = %04o vs %04o", ErrDuplicateSymbol, n, have, v)
		}
		dst[n] = v
	}
	return nil
}

// linkLine matches "LABEL, LINK SYMBOL" and "LINK SYMBOL" statements.
var linkLine = regexp.MustCompile(`^(\s*)([A-Za-z0-9.&$]+,\s*)?LINK\s+(\S+)\s*$`)

// Link loads a library ROM and symbol file, patches LINK placeholders in
// the application source with octal library addresses, assembles it and
// writes the merged image.
func Link(libROM, libSym, app, outROM string) error {
	romData, err := os.ReadFile(libROM)
	if err != nil {
		return fmt.Errorf("link %s: %w", libROM, err)
	}
	bytes, _, err := srec.Decode(strings.Split(string(romData), "\n"))
	if err != nil {
		return fmt.Errorf("link %s: %w", libROM, err)
	}
	words := srec.Words(bytes)

	symData, err := os.Open(libSym)
	if err != nil {
		return fmt.Errorf("link %s: %w", libSym, err)
	}
	symbols, err := ParseSymbols(symData)
	symData.Close()
	if err != nil {
		return fmt.Errorf("link %s: %w", libSym, err)
	}

	appData, err := os.ReadFile(app)
	if err != nil {
		return fmt.Errorf("link %s: %w", app, err)
	}
	src, err := patchLinks(string(appData), symbols)
	if err != nil {
		return fmt.Errorf("link %s: %w", app, err)
	}

	p, err := assembler.New().Assemble(src)
	if err != nil {
		return fmt.Errorf("link %s: %w", app, err)
	}
	if err := mergeWords(words, p.Words); err != nil {
		return fmt.Errorf("link %s: %w", app, err)
	}

	start, ok := p.Symbols["START"]
	if !ok {
		first := true
		for a := range words {
			if first || a < start {
				start = a
				first = false
			}
		}
	}
	return writeROM(outROM, words, start)
}

// patchLinks replaces each "LINK SYMBOL" statement with the symbol's octal
// address, keeping any label.
func patchLinks(src string, symbols map[string]uint16) (string, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i, line := range lines {
		m := linkLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, ok := symbols[strings.ToUpper(m[3])]
		if !ok {
			return "", fmt.Errorf("line %d: %w: %s", i+1, ErrUnknownLinkSymbol, m[3])
		}
		lines[i] = fmt.Sprintf("%s%s0%04o", m[1], m[2], v)
	}
	return strings.Join(lines, "\n"), nil
}

func writeSymbolFile(path string, symbols map[string]uint16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteSymbols(f, symbols); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
