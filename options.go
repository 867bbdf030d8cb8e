package schemapruner

// options.go handles options that control a Session. As in internal/server, each option is
// a closure that sets a field of the options struct.

import (
	"runtime"

	"github.com/rs/zerolog"
)

type options struct {
	log         zerolog.Logger
	concurrency int
	indent      string
}

func (o *options) setDefaults() {
	o.log = zerolog.Nop()
	o.concurrency = runtime.GOMAXPROCS(0)
}

// Logger sets the logger used to report skipped fragments, unknown fields and dangling references.
// By default nothing is logged.
func Logger(log zerolog.Logger) func(*options) {
	return func(opt *options) {
		opt.log = log
	}
}

// Concurrency limits how many queries ProcessAll analyses at once (default GOMAXPROCS).
// A value less than 1 means no limit.
func Concurrency(n int) func(*options) {
	return func(opt *options) {
		if n < 1 {
			n = -1
		}
		opt.concurrency = n
	}
}

// Indent makes PruneJSON produce indented JSON with the string (of spaces) used for each level of indentation
func Indent(indent string) func(*options) {
	return func(opt *options) {
		opt.indent = indent
	}
}
