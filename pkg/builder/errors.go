package builder

import "fmt"

// BuildError is the trace-corruption error kind from the error taxonomy:
// a snapshot/shadow mismatch, a PC->instruction disagreement, an
// out-of-range memory access, or a terminal opcode. It carries GlobalClk
// and a human-readable Reason so callers can pinpoint the offending step
// without re-running replay, mirroring the teacher's own preference for
// small typed errors (result.Rule, search.SearchTask) over bare strings.
type BuildError struct {
	GlobalClk uint64
	Reason    string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error at global_clk=%d: %s", e.GlobalClk, e.Reason)
}

func newBuildError(gc uint64, format string, args ...any) *BuildError {
	return &BuildError{GlobalClk: gc, Reason: fmt.Sprintf(format, args...)}
}
