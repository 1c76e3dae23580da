package device

import (
	"fmt"
	"log"
	"os"

	"github.com/Urethramancer/pdp8/cpu"
)

// Line printer IOT opcodes, device 60.
const (
	iotLPCF = 06601
	iotLPSF = 06602
	iotLPT  = 06604
	iotLPTC = 06606
)

// LPT is the line printer: characters written by the guest are appended to
// a host spool file.
type LPT struct {
	f        *os.File
	path     string
	reported bool
}

// NewLPT creates a detached line printer.
func NewLPT() *LPT {
	return &LPT{}
}

// Attach opens or creates the spool file.
func (p *LPT) Attach(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("lpt attach: %w", err)
	}
	p.Detach()
	p.f = f
	p.path = path
	p.reported = false
	return nil
}

// Detach closes the spool file.
func (p *LPT) Detach() {
	if p.f != nil {
		p.f.Close()
		p.f = nil
	}
}

// Attached reports whether a spool file is open.
func (p *LPT) Attached() bool {
	return p.f != nil
}

// DeviceNumbers claims device 60, the dispatch slot of the 066xx opcodes.
func (p *LPT) DeviceNumbers() []int {
	return []int{060}
}

// IOT handles the printer opcodes. The printer is always ready; write
// failures are reported once per attachment and then suppressed.
func (p *LPT) IOT(ir uint16, c *cpu.CPU) error {
	switch ir {
	case iotLPCF:
		// Clear flag; the flag is implicit.
	case iotLPSF:
		c.Skip()
	case iotLPT, iotLPTC:
		if p.f == nil {
			return nil
		}
		if _, err := p.f.Write([]byte{byte(c.AC)}); err != nil && !p.reported {
			p.reported = true
			log.Printf("lpt %s: %v", p.path, err)
		}
	}
	return nil
}
