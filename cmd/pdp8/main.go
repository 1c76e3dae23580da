// pdp8 loads a program image into a 4K PDP-8 and runs it with the console
// teletype on the controlling terminal.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/Urethramancer/pdp8/cpu"
	"github.com/Urethramancer/pdp8/device"
	"github.com/Urethramancer/pdp8/loader"
)

var cli struct {
	Run  runCmd  `cmd:"" help:"Load a program image and run it."`
	Dump dumpCmd `cmd:"" help:"Disassemble a program image."`
}

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func main() {
	ctx := kong.Parse(&cli)
	ctx.FatalIfErrorf(ctx.Run())
}

type runCmd struct {
	Image   string `arg:"" type:"existingfile" help:"Program image: octal text or S-records."`
	Start   string `help:"Octal start address, overriding the image's S9 record."`
	Steps   int    `default:"50000000" help:"Maximum instructions to execute."`
	RX0     string `help:"RX8E unit 0 image file."`
	RX1     string `help:"RX8E unit 1 image file."`
	TC0     string `help:"TC08 unit 0 tape image."`
	TC1     string `help:"TC08 unit 1 tape image."`
	LPT     string `help:"Line printer spool file."`
	Profile bool   `help:"Write a CPU profile to the current directory."`
}

func (r *runCmd) Run() error {
	if r.Profile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	c := cpu.New()
	if err := attachDevices(c, r); err != nil {
		return err
	}
	if err := loader.LoadFile(c, r.Image); err != nil {
		return err
	}
	if r.Start != "" {
		pc, err := strconv.ParseUint(r.Start, 8, 16)
		if err != nil {
			return fmt.Errorf("bad start address %q", r.Start)
		}
		c.SetPC(uint16(pc))
	}

	con := openConsole()
	defer con.Close()
	c.Console = con

	steps, err := c.Run(r.Steps)
	con.Close()
	if err != nil {
		return err
	}
	s := c.Snapshot()
	fmt.Printf("\n%d instructions executed\n", steps)
	fmt.Printf("PC %04o  AC %04o  MQ %04o  L %o  IR %04o  halted %v\n",
		s.PC, s.AC, s.MQ, s.L, s.IR, s.Halt)
	return nil
}

func attachDevices(c *cpu.CPU, r *runCmd) error {
	rx := device.NewRX8E()
	for unit, path := range map[int]string{0: r.RX0, 1: r.RX1} {
		if path == "" {
			continue
		}
		if err := rx.Attach(unit, path, true); err != nil {
			return err
		}
	}
	tc := device.NewTC08()
	for unit, path := range map[int]string{0: r.TC0, 1: r.TC1} {
		if path == "" {
			continue
		}
		if err := tc.Attach(unit, path, true); err != nil {
			return err
		}
	}
	lpt := device.NewLPT()
	if r.LPT != "" {
		if err := lpt.Attach(r.LPT); err != nil {
			return err
		}
	}
	for _, d := range []cpu.Device{rx, tc, lpt} {
		if err := c.AddDevice(d); err != nil {
			return err
		}
	}
	return nil
}

type dumpCmd struct {
	Image string `arg:"" type:"existingfile" help:"Program image: octal text or S-records."`
	From  string `default:"0" help:"First octal address."`
	To    string `default:"7777" help:"Last octal address."`
}

func (d *dumpCmd) Run() error {
	c := cpu.New()
	if err := loader.LoadFile(c, d.Image); err != nil {
		return err
	}
	from, err := strconv.ParseUint(d.From, 8, 16)
	if err != nil {
		return fmt.Errorf("bad address %q", d.From)
	}
	to, err := strconv.ParseUint(d.To, 8, 16)
	if err != nil {
		return fmt.Errorf("bad address %q", d.To)
	}
	for a := from; a <= to && a < cpu.MemSize; a++ {
		w := c.Mem[a]
		if w == 0 {
			continue
		}
		fmt.Printf("%04o: %04o  %s\n", a, w, cpu.Disassemble(uint16(a), w))
	}
	return nil
}
