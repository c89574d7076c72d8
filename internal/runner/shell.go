package runner

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSettleDelay is the pause between steps. It lets slow USB
// re-enumeration (after a bootloader-reset touch) settle before the next
// command addresses the device.
const DefaultSettleDelay = 1000 * time.Millisecond

// StepResult is the outcome of one executed command.
type StepResult struct {
	Output   string
	ExitCode int
}

// OK reports whether the step exited cleanly.
func (r StepResult) OK() bool { return r.ExitCode == 0 }

// Shell runs one command line through the host's command interpreter.
type Shell interface {
	Run(command string) StepResult
}

// HostShell executes commands via cmd /c or sh -c so PATH lookup and
// shell builtins (mode, PING redirection) work.
type HostShell struct{}

func (HostShell) Run(command string) StepResult {
	name, args := shellWrap(runtime.GOOS, command)
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		output = strings.TrimSpace(stderr.String())
	}

	exitCode := 0
	if err != nil {
		exitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		if output == "" {
			output = err.Error()
		}
	}

	return StepResult{Output: output, ExitCode: exitCode}
}

func shellWrap(goos, command string) (string, []string) {
	if goos == "windows" {
		return "cmd", []string{"/c", command}
	}
	return "sh", []string{"-c", command}
}

// StepResultMsg reports one finished step to the UI.
type StepResultMsg struct {
	Index    int
	Command  string
	Output   string
	ExitCode int
}

// StepSettledMsg fires after the settle delay that follows a step.
type StepSettledMsg struct {
	Index int
}

// ExecuteStep runs one command of a plan and delivers its result.
func ExecuteStep(sh Shell, index int, command string) tea.Cmd {
	return func() tea.Msg {
		res := sh.Run(command)
		return StepResultMsg{
			Index:    index,
			Command:  command,
			Output:   res.Output,
			ExitCode: res.ExitCode,
		}
	}
}

// Settle schedules the inter-step pause. A zero delay still goes through
// the message loop so step ordering stays identical in tests.
func Settle(delay time.Duration, index int) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return StepSettledMsg{Index: index} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return StepSettledMsg{Index: index}
	})
}
