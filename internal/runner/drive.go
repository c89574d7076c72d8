package runner

import (
	"fmt"
	"io"
	"time"
)

// Drive executes a run to completion without a UI, writing each step's
// output to w and sleeping the settle delay between steps. Used by the
// headless flash subcommand; the TUI drives the same engine through
// ExecuteStep/Settle instead.
func Drive(sh Shell, run *Run, settle time.Duration, w io.Writer) State {
	for {
		command, ok := run.Current()
		if !ok {
			break
		}

		fmt.Fprintf(w, "$ %s\n", command)
		res := sh.Run(command)
		if res.Output != "" {
			fmt.Fprintln(w, res.Output)
		}
		run.Record(res.OK())

		if _, more := run.Current(); more && settle > 0 {
			time.Sleep(settle)
		}
	}
	return run.State()
}
