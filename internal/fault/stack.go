package fault

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// captureStack records the caller's stack, skipping skip frames above it.
func captureStack(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// StackOf returns the stack recorded by the first fault in err's chain that
// carries one, or the error's verbose formatting otherwise.
func StackOf(err error) string {
	if err == nil {
		return ""
	}
	var tracer interface{ StackTrace() string }
	if errors.As(err, &tracer) {
		if s := tracer.StackTrace(); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%+v", err)
}
