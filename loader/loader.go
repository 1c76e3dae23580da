// Package loader reads program images into core memory and writes memory
// dumps. Two text formats load: whitespace-separated octal tokens with
// @ADDR / ADDR: / ADDR:VALUE addressing, and S-records (detected by the
// first non-blank line).
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Urethramancer/pdp8/cpu"
	"github.com/Urethramancer/pdp8/srec"
)

// LoadFile loads a program image file into memory. An S9 record sets the
// program counter.
func LoadFile(c *cpu.CPU, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := Load(c, string(data)); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load loads image text into memory, sniffing the format.
func Load(c *cpu.CPU, text string) error {
	if srec.IsImage(text) {
		return loadSRecords(c, text)
	}
	return loadOctal(c, text)
}

func loadSRecords(c *cpu.CPU, text string) error {
	bytes, start, err := srec.Decode(strings.Split(text, "\n"))
	if err != nil {
		return err
	}
	for a, w := range srec.Words(bytes) {
		if err := c.Write(int(a), w); err != nil {
			return err
		}
	}
	if start != nil {
		c.SetPC(*start)
	}
	return nil
}

// loadOctal walks the token stream, tracking a load address that
// post-increments for each stored word.
func loadOctal(c *cpu.CPU, text string) error {
	addr := uint16(0)
	for n, line := range strings.Split(text, "\n") {
		if i := strings.IndexAny(line, ";#"); i >= 0 {
			line = line[:i]
		}
		for _, tok := range strings.Fields(line) {
			var err error
			addr, err = loadToken(c, addr, tok)
			if err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}
		}
	}
	return nil
}

func loadToken(c *cpu.CPU, addr uint16, tok string) (uint16, error) {
	switch {
	case strings.HasPrefix(tok, "@"):
		return parseOctal(tok[1:])
	case strings.HasSuffix(tok, ":"):
		return parseOctal(tok[:len(tok)-1])
	case strings.Contains(tok, ":"):
		at, vs, _ := strings.Cut(tok, ":")
		a, err := parseOctal(at)
		if err != nil {
			return addr, err
		}
		v, err := parseOctal(vs)
		if err != nil {
			return addr, err
		}
		if err := c.Write(int(a), v); err != nil {
			return addr, err
		}
		return cpu.Mask(a + 1), nil
	default:
		v, err := parseOctal(tok)
		if err != nil {
			return addr, err
		}
		if err := c.Write(int(addr), v); err != nil {
			return addr, err
		}
		return cpu.Mask(addr + 1), nil
	}
}

func parseOctal(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 8, 16)
	if err != nil {
		return 0, fmt.Errorf("bad octal token %q", s)
	}
	return cpu.Mask(uint16(v)), nil
}

// SaveImage writes memory as octal rows of eight words, skipping rows that
// are entirely zero. The output loads back through Load.
func SaveImage(c *cpu.CPU, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for row := 0; row < cpu.MemSize; row += 8 {
		used := false
		for i := 0; i < 8; i++ {
			if c.Mem[row+i] != 0 {
				used = true
				break
			}
		}
		if !used {
			continue
		}
		fmt.Fprintf(bw, "%04o:", row)
		for i := 0; i < 8; i++ {
			fmt.Fprintf(bw, " %04o", c.Mem[row+i])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// SaveImageFile writes a memory dump to a file.
func SaveImageFile(c *cpu.CPU, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()
	if err := SaveImage(c, f); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
