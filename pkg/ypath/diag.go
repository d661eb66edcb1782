/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"fmt"
	"io"
)

// Diag receives the structured notices and errors the engine emits while
// compiling path expressions. Implementations must tolerate a zero Span.
type Diag interface {
	// Noticef reports progress detail of no consequence to the caller.
	Noticef(s Span, format string, args ...interface{})
	// Errorf reports a failure which also surfaces as a returned error.
	Errorf(s Span, format string, args ...interface{})
}

// NopDiag discards all messages.
var NopDiag Diag = nopDiag{}

type nopDiag struct{}

func (nopDiag) Noticef(Span, string, ...interface{}) {}
func (nopDiag) Errorf(Span, string, ...interface{})  {}

// WriterDiag returns a Diag that writes one formatted line per message to w.
func WriterDiag(w io.Writer) Diag { return writerDiag{w} }

type writerDiag struct{ w io.Writer }

func (d writerDiag) Noticef(s Span, format string, args ...interface{}) {
	fmt.Fprintf(d.w, "ypath: notice: %d-%d: %s\n", s.Start, s.End, fmt.Sprintf(format, args...))
}

func (d writerDiag) Errorf(s Span, format string, args ...interface{}) {
	fmt.Fprintf(d.w, "ypath: error: %d-%d: %s\n", s.Start, s.End, fmt.Sprintf(format, args...))
}
