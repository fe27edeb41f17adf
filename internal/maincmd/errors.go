package maincmd

import "errors"

// errCompile and errRuntime are sentinels wrapped around the errors Run
// returns, so Main can recover the distilled spec's exit codes (65/70)
// with errors.Is instead of threading a status value through the
// buildCmds-shaped command signature.
var (
	errCompile = errors.New("compile error")
	errRuntime = errors.New("runtime error")
)
