package runner

// State is the lifecycle of one flashing run.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Run tracks one in-progress flashing attempt: the planned commands, the
// step cursor, and per-step results. A failing step never aborts the rest
// of the plan; only the aggregate verdict reflects it. Terminal states are
// never re-entered: the next attempt builds a fresh Run.
type Run struct {
	commands []string
	index    int
	results  []bool
	state    State
}

// NewRun starts a run over the given plan. An empty plan completes
// immediately (vacuously succeeded).
func NewRun(commands []string) *Run {
	r := &Run{
		commands: append([]string(nil), commands...),
		state:    StateRunning,
	}
	r.finalizeIfDone()
	return r
}

// Current returns the command at the step cursor, or ok=false when the
// run has passed its last step.
func (r *Run) Current() (string, bool) {
	if r.state != StateRunning || r.index >= len(r.commands) {
		return "", false
	}
	return r.commands[r.index], true
}

// Record stores the outcome of the current step and advances the cursor.
// When the last step has been recorded the run moves to its terminal state.
func (r *Run) Record(ok bool) {
	if r.state != StateRunning {
		return
	}
	r.results = append(r.results, ok)
	r.index++
	r.finalizeIfDone()
}

func (r *Run) finalizeIfDone() {
	if r.index < len(r.commands) {
		return
	}
	r.state = StateSucceeded
	for _, ok := range r.results {
		if !ok {
			r.state = StateFailed
			return
		}
	}
}

// State returns the run's current state.
func (r *Run) State() State { return r.state }

// Index returns the step cursor.
func (r *Run) Index() int { return r.index }

// Commands returns the planned command list.
func (r *Run) Commands() []string { return r.commands }

// Results returns the per-step outcomes recorded so far.
func (r *Run) Results() []bool { return append([]bool(nil), r.results...) }
