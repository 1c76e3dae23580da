package device

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/Urethramancer/pdp8/cpu"
	"github.com/Urethramancer/pdp8/srec"
)

// TC08 IOT opcodes, devices 76 and 77.
const (
	iotDTCA = 06762
	iotDTSF = 06764
	iotDTLB = 06766
	iotDTXA = 06771
)

// DECtape geometry: 129 words per block, stored as consecutive
// little-endian 16-bit words with only the low 12 bits significant.
const (
	tcBlockWords = 129
	tcBlockBytes = tcBlockWords * 2
	tcMaxBlocks  = 02000
)

type tcDrive struct {
	path     string
	size     int64
	image    []uint16
	readOnly bool
}

// TC08 is the DECtape controller: two drives and a block-transfer
// interface to core memory.
type TC08 struct {
	drives   [2]*tcDrive
	ready    bool
	xferAddr uint16
}

// NewTC08 creates a controller with no drives attached.
func NewTC08() *TC08 {
	return &TC08{}
}

// Attach connects a drive to a tape image. A file that starts with an
// S-record attaches as a read-only in-memory image; anything else is a
// writable binary image.
func (d *TC08) Attach(unit int, path string, create bool) error {
	if unit < 0 || unit >= len(d.drives) {
		return fmt.Errorf("tc08 unit %d: %w", unit, ErrInvalidDrive)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if srec.IsImage(string(data)) {
			img, err := loadImage(string(data))
			if err != nil {
				return fmt.Errorf("tc08 attach %s: %w", path, err)
			}
			d.drives[unit] = &tcDrive{path: path, image: img, readOnly: true}
			return nil
		}
		d.drives[unit] = &tcDrive{path: path, size: int64(len(data))}
		return nil
	case !create:
		return fmt.Errorf("tc08 attach %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tc08 create %s: %w", path, err)
	}
	f.Close()
	d.drives[unit] = &tcDrive{path: path}
	return nil
}

// loadImage decodes an S-record tape into a word array sized one past the
// highest populated word.
func loadImage(text string) ([]uint16, error) {
	bytes, _, err := srec.Decode(strings.Split(text, "\n"))
	if err != nil {
		return nil, err
	}
	max := 0
	for a := range bytes {
		if a > max {
			max = a
		}
	}
	img := make([]uint16, max/2+1)
	for a, w := range srec.Words(bytes) {
		img[a] = w
	}
	return img, nil
}

// Detach disconnects a drive.
func (d *TC08) Detach(unit int) error {
	if unit < 0 || unit >= len(d.drives) {
		return fmt.Errorf("tc08 unit %d: %w", unit, ErrInvalidDrive)
	}
	d.drives[unit] = nil
	return nil
}

// TapeStatus describes an attached tape drive.
type TapeStatus struct {
	Attached bool
	Path     string
	Size     int64
	ReadOnly bool
}

// Status reports a drive's attachment state.
func (d *TC08) Status(unit int) (TapeStatus, error) {
	if unit < 0 || unit >= len(d.drives) {
		return TapeStatus{}, fmt.Errorf("tc08 unit %d: %w", unit, ErrInvalidDrive)
	}
	dr := d.drives[unit]
	if dr == nil {
		return TapeStatus{}, nil
	}
	size := dr.size
	if dr.image != nil {
		size = int64(len(dr.image)) * 2
	}
	return TapeStatus{Attached: true, Path: dr.path, Size: size, ReadOnly: dr.readOnly}, nil
}

func (d *TC08) drive(unit, block int) (*tcDrive, error) {
	if unit < 0 || unit >= len(d.drives) {
		return nil, fmt.Errorf("tc08 unit %d: %w", unit, ErrInvalidDrive)
	}
	dr := d.drives[unit]
	if dr == nil {
		return nil, fmt.Errorf("tc08 unit %d: %w", unit, ErrNotAttached)
	}
	if block < 0 || block >= tcMaxBlocks {
		return nil, fmt.Errorf("tc08 block %d: %w", block, ErrInvalidBlock)
	}
	return dr, nil
}

// ReadBlock reads one 129-word block into target. Blocks past the end of
// an S-record image read as zero words.
func (d *TC08) ReadBlock(unit, block int, target []uint16) error {
	dr, err := d.drive(unit, block)
	if err != nil {
		return err
	}
	if len(target) < tcBlockWords {
		return fmt.Errorf("tc08 read: %w", ErrBufferTooSmall)
	}
	if dr.image != nil {
		base := block * tcBlockWords
		for i := 0; i < tcBlockWords; i++ {
			if base+i < len(dr.image) {
				target[i] = dr.image[base+i] & 07777
			} else {
				target[i] = 0
			}
		}
		return nil
	}
	offset := int64(block) * tcBlockBytes
	if offset+tcBlockBytes > dr.size {
		return fmt.Errorf("tc08 block %d past end of %s: %w", block, dr.path, ErrInvalidBlock)
	}
	f, err := os.Open(dr.path)
	if err != nil {
		return fmt.Errorf("tc08 read %s: %w", dr.path, err)
	}
	defer f.Close()
	raw := make([]byte, tcBlockBytes)
	if _, err := f.ReadAt(raw, offset); err != nil {
		return fmt.Errorf("tc08 read %s block %d: %w", dr.path, block, err)
	}
	for i := 0; i < tcBlockWords; i++ {
		target[i] = binary.LittleEndian.Uint16(raw[2*i:]) & 07777
	}
	return nil
}

// WriteBlock writes one 129-word block from source, growing the image file
// as needed. Word 128 is stored as zero.
func (d *TC08) WriteBlock(unit, block int, source []uint16) error {
	dr, err := d.drive(unit, block)
	if err != nil {
		return err
	}
	if dr.readOnly {
		return fmt.Errorf("tc08 %s: %w", dr.path, ErrReadOnlyImage)
	}
	if len(source) < tcBlockWords {
		return fmt.Errorf("tc08 write: %w", ErrBufferTooSmall)
	}
	raw := make([]byte, tcBlockBytes)
	for i := 0; i < tcBlockWords-1; i++ {
		binary.LittleEndian.PutUint16(raw[2*i:], source[i]&07777)
	}
	f, err := os.OpenFile(dr.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("tc08 write %s: %w", dr.path, err)
	}
	defer f.Close()
	offset := int64(block) * tcBlockBytes
	if _, err := f.WriteAt(raw, offset); err != nil {
		return fmt.Errorf("tc08 write %s block %d: %w", dr.path, block, err)
	}
	if end := offset + tcBlockBytes; end > dr.size {
		dr.size = end
	}
	return nil
}

// DeviceNumbers claims devices 76 and 77.
func (d *TC08) DeviceNumbers() []int {
	return []int{076, 077}
}

// IOT handles the controller opcodes. DTLB reads the block selected by AC
// into core at the transfer address; failures leave the controller
// not-ready so the guest sees no skip.
func (d *TC08) IOT(ir uint16, c *cpu.CPU) error {
	switch ir {
	case iotDTCA:
		d.ready = false
		d.xferAddr = 0
	case iotDTXA:
		d.xferAddr = c.AC & 07777
	case iotDTSF:
		if d.ready {
			c.Skip()
		}
	case iotDTLB:
		unit := int(c.AC >> 10 & 1)
		block := int(c.AC & 01777)
		var buf [tcBlockWords]uint16
		if err := d.ReadBlock(unit, block, buf[:]); err != nil {
			d.ready = false
			return nil
		}
		for i, w := range buf {
			c.Mem[(int(d.xferAddr)+i)&07777] = w
		}
		d.ready = true
		c.Skip()
	}
	return nil
}
