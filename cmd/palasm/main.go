// palasm assembles PAL source into an S-record image.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Urethramancer/pdp8/assembler"
)

var cli struct {
	Input   string `arg:"" type:"existingfile" help:"PAL source file."`
	Output  string `short:"o" help:"S-record output file; defaults to the input with a .srec extension."`
	Listing bool   `short:"l" help:"Print a listing to stdout."`
}

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func main() {
	kong.Parse(&cli)

	out := cli.Output
	if out == "" {
		out = strings.TrimSuffix(cli.Input, filepath.Ext(cli.Input)) + ".srec"
	}

	p, err := assembler.AssembleFile(cli.Input, out)
	if cli.Listing && p != nil {
		p.Listing(os.Stdout)
	}
	if err != nil {
		var le *assembler.LineError
		if errors.As(err, &le) {
			log.Fatalf("%s: %v", cli.Input, le)
		}
		log.Fatal(err)
	}
}
