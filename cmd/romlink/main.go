// romlink builds ROM libraries from position-independent PAL routines and
// links applications against them.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/Urethramancer/pdp8/linker"
)

var cli struct {
	Buildlib buildlibCmd `cmd:"" help:"Assemble library routines into a ROM and symbol file."`
	Link     linkCmd     `cmd:"" help:"Link an application against a library ROM."`
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

type buildlibCmd struct {
	Files []string `arg:"" type:"existingfile" help:"Library routine sources."`
	Base  string   `default:"0200" help:"Octal base address of the first page."`
	Page  string   `default:"0200" help:"Octal page size."`
	ROM   string   `default:"lib.srec" help:"ROM output file."`
	Sym   string   `default:"lib.sym" help:"Symbol table output file."`
}

func (b *buildlibCmd) Run() error {
	base, err := strconv.ParseUint(b.Base, 8, 16)
	if err != nil {
		return fmt.Errorf("bad base address %q", b.Base)
	}
	page, err := strconv.ParseUint(b.Page, 8, 16)
	if err != nil {
		return fmt.Errorf("bad page size %q", b.Page)
	}
	return linker.BuildLib(b.Files, uint16(base), uint16(page), b.ROM, b.Sym)
}

type linkCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Library ROM (S-records)."`
	Sym string `arg:"" type:"existingfile" help:"Library symbol file."`
	App string `arg:"" type:"existingfile" help:"Application source."`
	Out string `default:"app.srec" help:"Linked output file."`
}

func (l *linkCmd) Run() error {
	return linker.Link(l.ROM, l.Sym, l.App, l.Out)
}
