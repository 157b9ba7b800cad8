package obstack

import (
	"fmt"
	"os"
)

// ExitFailure is the exit status the default allocation-failure handler
// terminates with.
var ExitFailure = 1

// AllocFailedHandler runs when a chunk allocator returns nil and the obstack
// has no handler of its own (see SetAllocFailedHandler). A handler must not
// return: it should terminate the process or panic past the caller. The
// default prints a diagnostic to standard error and exits with ExitFailure.
var AllocFailedHandler func() = printAndAbort

func printAndAbort() {
	fmt.Fprintln(os.Stderr, "memory exhausted")
	os.Exit(ExitFailure)
}

// SetAllocFailedHandler installs a per-obstack allocation-failure handler,
// overriding the package-level AllocFailedHandler. Like the package-level
// hook it must not return; nil reverts to the package-level hook.
func (o *Obstack) SetAllocFailedHandler(f func()) { o.allocFailed = f }
