// Package callstack captures the live call stack as a list of frames carrying
// the package-qualified function names used for owner attribution.
package callstack

import (
	"runtime"
	"strings"
)

const initialDepth = 32

// Frame is one call stack entry, innermost first.
type Frame struct {
	// Function is the fully qualified function name, e.g.
	// "github.com/acme/mod/render.(*Pass).Run".
	Function string
	// Package is the import path the function belongs to.
	Package string
	// Symbol is the package-local part of Function.
	Symbol string
	File   string
	Line   int
}

// Capture returns the frames of the calling goroutine, skipping skip frames
// above the caller of Capture.
func Capture(skip int) []Frame {
	pcs := make([]uintptr, initialDepth)
	var n int
	for {
		// 2 accounts for runtime.Callers and Capture itself.
		n = runtime.Callers(skip+2, pcs)
		if n < len(pcs) {
			pcs = pcs[:n]
			break
		}
		pcs = make([]uintptr, len(pcs)*2)
	}
	if n == 0 {
		return nil
	}

	out := make([]Frame, 0, n)
	frames := runtime.CallersFrames(pcs)
	for {
		fr, more := frames.Next()
		if fr.Function != "" {
			out = append(out, FromFunction(fr.Function, fr.File, fr.Line))
		}
		if !more {
			break
		}
	}
	return out
}

// FromFunction builds a Frame from a runtime function name.
func FromFunction(function, file string, line int) Frame {
	pkg, symbol := SplitFunction(function)
	return Frame{
		Function: function,
		Package:  pkg,
		Symbol:   symbol,
		File:     file,
		Line:     line,
	}
}

// SplitFunction separates a runtime function name into its import path and
// the symbol within that package. The linker escapes dots in the last path
// element as %2e, so the first dot after the last slash starts the symbol.
func SplitFunction(function string) (pkg, symbol string) {
	if function == "" {
		return "", ""
	}
	lastSlash := strings.LastIndexByte(function, '/')
	dot := strings.IndexByte(function[lastSlash+1:], '.')
	if dot < 0 {
		return unescape(function), ""
	}
	dot += lastSlash + 1
	return unescape(function[:dot]), function[dot+1:]
}

func unescape(pkg string) string {
	if !strings.Contains(pkg, "%") {
		return pkg
	}
	return strings.ReplaceAll(pkg, "%2e", ".")
}
