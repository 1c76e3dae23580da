package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Urethramancer/pdp8/cpu"
)

// RX8E IOT opcodes, device 75.
const (
	iotRXLCD  = 06751
	iotRXXDR  = 06752
	iotRXSTR  = 06753
	iotRXSER  = 06754
	iotRXSDN  = 06755
	iotRXINTR = 06756
	iotRXINIT = 06757
)

// Density selects the floppy media geometry.
type Density int

const (
	// RX01 is single density: 128-byte sectors of 64 words.
	RX01 Density = iota
	// RX02 is double density: 256-byte sectors of 128 words.
	RX02
)

func (d Density) String() string {
	if d == RX02 {
		return "RX02"
	}
	return "RX01"
}

// Fixed floppy geometry.
const (
	rxTracks  = 77
	rxSectors = 26

	rx01SectorBytes = 128
	rx02SectorBytes = 256
	rx01Words       = 64
	rx02Words       = 128

	rx01ImageBytes = rxTracks * rxSectors * rx01SectorBytes
	rx02ImageBytes = rxTracks * rxSectors * rx02SectorBytes
)

// SectorBytes returns the sector size for the density.
func (d Density) SectorBytes() int {
	if d == RX02 {
		return rx02SectorBytes
	}
	return rx01SectorBytes
}

// SectorWords returns the 12-bit words per sector for the density.
func (d Density) SectorWords() int {
	if d == RX02 {
		return rx02Words
	}
	return rx01Words
}

type rxDrive struct {
	path    string
	density Density
	size    int64
}

// RX8E is the floppy controller: two drives plus the multi-phase command
// state machine driven by the guest through IOTs.
type RX8E struct {
	drives [2]*rxDrive

	loadPhase     int
	pendingSector uint16
	pendingTrack  uint16
	pendingUnit   int
	pendingWrite  bool

	buf            [rx02Words]uint16
	wordIndex      int
	wordsPerSector int

	transferReady bool
	done          bool
	errFlag       bool
}

// NewRX8E creates a controller with no drives attached.
func NewRX8E() *RX8E {
	return &RX8E{}
}

// Attach connects a drive to an image file. When creating, density comes
// from the file extension (.rx02 means RX02); when attaching an existing
// file it comes from the file size.
func (d *RX8E) Attach(unit int, path string, create bool) error {
	if unit < 0 || unit >= len(d.drives) {
		return fmt.Errorf("rx8e unit %d: %w", unit, ErrInvalidDrive)
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		density := RX01
		if info.Size() >= rx02ImageBytes {
			density = RX02
		}
		d.drives[unit] = &rxDrive{path: path, density: density, size: info.Size()}
		return nil
	case !create:
		return fmt.Errorf("rx8e attach %s: %w", path, err)
	}

	density := RX01
	size := int64(rx01ImageBytes)
	if strings.EqualFold(filepath.Ext(path), ".rx02") {
		density = RX02
		size = rx02ImageBytes
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rx8e create %s: %w", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("rx8e create %s: %w", path, err)
	}
	d.drives[unit] = &rxDrive{path: path, density: density, size: size}
	return nil
}

// Detach disconnects a drive.
func (d *RX8E) Detach(unit int) error {
	if unit < 0 || unit >= len(d.drives) {
		return fmt.Errorf("rx8e unit %d: %w", unit, ErrInvalidDrive)
	}
	d.drives[unit] = nil
	return nil
}

// DriveStatus describes an attached floppy drive.
type DriveStatus struct {
	Attached bool
	Path     string
	Density  Density
	Size     int64
}

// Status reports a drive's attachment state.
func (d *RX8E) Status(unit int) (DriveStatus, error) {
	if unit < 0 || unit >= len(d.drives) {
		return DriveStatus{}, fmt.Errorf("rx8e unit %d: %w", unit, ErrInvalidDrive)
	}
	dr := d.drives[unit]
	if dr == nil {
		return DriveStatus{}, nil
	}
	return DriveStatus{Attached: true, Path: dr.path, Density: dr.density, Size: dr.size}, nil
}

// check validates a sector access and returns the drive.
func (d *RX8E) check(unit, track, sector int) (*rxDrive, error) {
	if unit < 0 || unit >= len(d.drives) {
		return nil, fmt.Errorf("rx8e unit %d: %w", unit, ErrInvalidDrive)
	}
	dr := d.drives[unit]
	if dr == nil {
		return nil, fmt.Errorf("rx8e unit %d: %w", unit, ErrNotAttached)
	}
	if track < 0 || track >= rxTracks {
		return nil, fmt.Errorf("rx8e track %d: %w", track, ErrInvalidTrack)
	}
	if sector < 0 || sector >= rxSectors {
		return nil, fmt.Errorf("rx8e sector %d: %w", sector, ErrInvalidSector)
	}
	return dr, nil
}

// ReadSector reads one sector into target, which must hold the density's
// word count.
func (d *RX8E) ReadSector(unit, track, sector int, target []uint16) error {
	dr, err := d.check(unit, track, sector)
	if err != nil {
		return err
	}
	words := dr.density.SectorWords()
	if len(target) < words {
		return fmt.Errorf("rx8e read: %w", ErrBufferTooSmall)
	}
	f, err := os.Open(dr.path)
	if err != nil {
		return fmt.Errorf("rx8e read %s: %w", dr.path, err)
	}
	defer f.Close()
	raw := make([]byte, dr.density.SectorBytes())
	if _, err := f.ReadAt(raw, dr.offset(track, sector)); err != nil {
		return fmt.Errorf("rx8e read %s track %d sector %d: %w", dr.path, track, sector, err)
	}
	unpackWords(raw, target[:words])
	return nil
}

// WriteSector writes one sector from source. Unused tail bytes of the
// sector are written as zero.
func (d *RX8E) WriteSector(unit, track, sector int, source []uint16) error {
	dr, err := d.check(unit, track, sector)
	if err != nil {
		return err
	}
	words := dr.density.SectorWords()
	if len(source) < words {
		return fmt.Errorf("rx8e write: %w", ErrBufferTooSmall)
	}
	raw := make([]byte, dr.density.SectorBytes())
	packWords(source[:words], raw)
	f, err := os.OpenFile(dr.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("rx8e write %s: %w", dr.path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(raw, dr.offset(track, sector)); err != nil {
		return fmt.Errorf("rx8e write %s track %d sector %d: %w", dr.path, track, sector, err)
	}
	return nil
}

func (dr *rxDrive) offset(track, sector int) int64 {
	return int64(track*rxSectors+sector) * int64(dr.density.SectorBytes())
}

// DeviceNumbers claims device 75.
func (d *RX8E) DeviceNumbers() []int {
	return []int{075}
}

// Controller status word bits returned by INTR.
const (
	rxStatusDone          = 04000
	rxStatusError         = 02000
	rxStatusTransferReady = 01000
)

// IOT drives the command state machine. LCD loads the command in two
// phases, INTR validates it and primes the sector buffer, XDR moves one
// word per invocation, and STR/SER/SDN are the skip flags.
func (d *RX8E) IOT(ir uint16, c *cpu.CPU) error {
	switch ir {
	case iotRXLCD:
		if d.loadPhase == 0 {
			d.pendingUnit = int(c.AC >> 5 & 1)
			d.pendingSector = c.AC & 037
			d.pendingWrite = c.AC&0100 != 0
			d.loadPhase = 1
		} else {
			d.pendingTrack = c.AC & 0377
			d.loadPhase = 2
		}
		d.done = false
		d.errFlag = false
	case iotRXINTR:
		d.prime(c)
	case iotRXXDR:
		d.transfer(c)
	case iotRXSTR:
		if d.transferReady {
			c.Skip()
		}
	case iotRXSER:
		if d.errFlag {
			c.Skip()
		}
	case iotRXSDN:
		if d.done {
			c.Skip()
		}
	case iotRXINIT:
		*d = RX8E{drives: d.drives}
	}
	return nil
}

// prime validates the loaded command and prepares the sector buffer: reads
// fill it from the media, writes clear it for XDR to fill.
func (d *RX8E) prime(c *cpu.CPU) {
	d.transferReady = false
	d.done = false
	if d.loadPhase != 2 {
		d.fail()
	} else if dr, err := d.check(d.pendingUnit, int(d.pendingTrack), int(d.pendingSector)); err != nil {
		d.fail()
	} else {
		d.wordsPerSector = dr.density.SectorWords()
		d.wordIndex = 0
		if d.pendingWrite {
			clear(d.buf[:])
			d.transferReady = true
		} else if err := d.ReadSector(d.pendingUnit, int(d.pendingTrack), int(d.pendingSector), d.buf[:d.wordsPerSector]); err != nil {
			d.fail()
		} else {
			d.transferReady = true
		}
	}
	c.AC = d.statusWord()
}

// fail latches the error flag; the command must be re-issued.
func (d *RX8E) fail() {
	d.errFlag = true
	d.transferReady = false
	d.loadPhase = 0
}

func (d *RX8E) statusWord() uint16 {
	var w uint16
	if d.done {
		w |= rxStatusDone
	}
	if d.errFlag {
		w |= rxStatusError
	}
	if d.transferReady {
		w |= rxStatusTransferReady
	}
	return w
}

// transfer moves one word between AC and the sector buffer. The transfer
// completes when the whole sector has moved; writes flush to the media.
func (d *RX8E) transfer(c *cpu.CPU) {
	if !d.transferReady || d.wordIndex >= d.wordsPerSector {
		return
	}
	if d.pendingWrite {
		d.buf[d.wordIndex] = c.AC & 07777
	} else {
		c.AC = d.buf[d.wordIndex]
	}
	d.wordIndex++
	if d.wordIndex < d.wordsPerSector {
		return
	}
	if d.pendingWrite {
		if err := d.WriteSector(d.pendingUnit, int(d.pendingTrack), int(d.pendingSector), d.buf[:d.wordsPerSector]); err != nil {
			d.fail()
			return
		}
	}
	d.transferReady = false
	d.done = true
	d.loadPhase = 0
}
