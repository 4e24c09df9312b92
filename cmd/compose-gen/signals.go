package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// terminalGuard holds the terminal mode captured at startup. ReadPassword
// disables echo and only restores it when it returns, so an interrupt that
// exits the process mid-prompt must put the saved mode back itself.
type terminalGuard struct {
	fd    int
	state *term.State
}

// saveTerminal captures the mode of f when it is a terminal. For anything
// else the returned guard does nothing.
func saveTerminal(f *os.File) terminalGuard {
	if f == nil {
		return terminalGuard{}
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return terminalGuard{}
	}
	state, err := term.GetState(fd)
	if err != nil {
		return terminalGuard{}
	}
	return terminalGuard{fd: fd, state: state}
}

func (g terminalGuard) restore() error {
	if g.state == nil {
		return nil
	}
	if err := term.Restore(g.fd, g.state); err != nil {
		return errors.Wrap(err, "restore terminal")
	}
	return nil
}

// onInterrupt restores the terminal before announcing the interrupt and
// leaving with status 0.
func onInterrupt(restore func() error, out io.Writer, exit func(int)) {
	if restore != nil {
		_ = restore()
	}
	_, _ = fmt.Fprintln(out, "\nGenerator interrupted. Exiting.")
	exit(0)
}
