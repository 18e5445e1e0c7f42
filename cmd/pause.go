package cmd

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// waitForKey blocks until one key is pressed on in. It returns at once when
// in is not a terminal.
func waitForKey(in *os.File, hint io.Writer) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	fmt.Fprint(hint, "Press any key to exit...")
	defer fmt.Fprintln(hint)

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer term.Restore(fd, state)

	var b [1]byte
	_, _ = in.Read(b[:])
}
