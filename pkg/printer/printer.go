// Package printer writes user facing output. Diagnostics go to the logger.
package printer

import (
	"fmt"
	"io"
)

type Printer interface {
	Errorf(string, ...any)
	Info(string)
	Infof(string, ...any)
}

type printer struct {
	out    io.Writer
	errOut io.Writer
}

func New(out io.Writer, errOut io.Writer) Printer {
	return &printer{out: out, errOut: errOut}
}

func (p printer) Errorf(s string, a ...any) {
	_, _ = fmt.Fprintf(p.errOut, s, a...)
}

func (p printer) Info(s string) {
	_, _ = fmt.Fprint(p.out, s)
}

func (p printer) Infof(s string, a ...any) {
	_, _ = fmt.Fprintf(p.out, s, a...)
}
