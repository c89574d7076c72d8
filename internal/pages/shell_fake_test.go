package pages

import "github.com/seriallab/fwload/internal/runner"

// fakeShell records every command and plays back scripted results.
type fakeShell struct {
	results  []runner.StepResult
	commands []string
}

func (f *fakeShell) Run(command string) runner.StepResult {
	f.commands = append(f.commands, command)
	if len(f.results) == 0 {
		return runner.StepResult{Output: "ok", ExitCode: 0}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}
