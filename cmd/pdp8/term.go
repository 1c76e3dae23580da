package main

import (
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// hostConsole is the teletype on the controlling terminal. Raw mode with
// VMIN=0 makes single-byte reads non-blocking so KeyAvailable can poll.
// If stdin is not a terminal the console degrades to "no key available"
// while output still reaches stdout.
type hostConsole struct {
	restore *unix.Termios
	pending byte
	waiting bool
	raw     bool
}

func openConsole() *hostConsole {
	hc := &hostConsole{}
	fd := int(os.Stdin.Fd())
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return hc
	}
	saved := *t
	hc.restore = &saved

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err == nil {
		hc.raw = true
	}
	return hc
}

// Close restores the terminal state.
func (hc *hostConsole) Close() {
	if hc.restore != nil {
		unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TCSETS, hc.restore)
		hc.restore = nil
	}
}

func (hc *hostConsole) KeyAvailable() bool {
	if hc.waiting {
		return true
	}
	if !hc.raw {
		return false
	}
	var b [1]byte
	n, err := os.Stdin.Read(b[:])
	if err != nil || n == 0 {
		return false
	}
	hc.pending = b[0]
	hc.waiting = true
	return true
}

func (hc *hostConsole) ReadKey() (byte, error) {
	for !hc.waiting {
		if !hc.raw {
			return 0, io.EOF
		}
		var b [1]byte
		n, err := os.Stdin.Read(b[:])
		if err != nil {
			return 0, err
		}
		if n == 1 {
			hc.pending = b[0]
			hc.waiting = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	hc.waiting = false
	return hc.pending, nil
}

func (hc *hostConsole) WriteByte(b byte) error {
	_, err := os.Stdout.Write([]byte{b})
	return err
}
