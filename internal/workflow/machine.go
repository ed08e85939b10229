// Package workflow drives the two remote-mutation dialogs (query a known
// location, process a new one) as an explicit finite-state machine against
// the location backend.
package workflow

// Kind identifies which workflow a dialog drives.
type Kind string

const (
	KindQuery   Kind = "query"
	KindProcess Kind = "process"
)

// Title returns the dialog title for the workflow.
func (k Kind) Title() string {
	if k == KindProcess {
		return "Process location"
	}
	return "Query location"
}

// State is a dialog state. A dialog starts in StateInput; StateWorking is
// reachable only through a submit from StateInput and accepts no further
// input until the backend answers.
type State string

const (
	StateInput   State = "input"
	StateWorking State = "working"
	StateFailure State = "failure"
)

// QueryForm holds the query dialog's form state. Names is the
// server-supplied selection list, loaded asynchronously after the dialog
// opens; the control stays disabled until NamesLoaded is set.
type QueryForm struct {
	LocationName string
	Names        []string
	NamesLoaded  bool
}

// ProcessForm holds the process dialog's form state. Values are kept as
// entered so a retry after failure restores them unchanged. ImageBase64
// carries the attached photo re-encoded as a data URL.
type ProcessForm struct {
	Lat         string
	Lon         string
	Radius      string
	SURs        string
	ImageBase64 string
	ImageName   string
}

// Dialog is one open workflow instance. The id distinguishes instances so
// a backend response resolving after the user closed the dialog is
// recognized as stale and discarded.
type Dialog struct {
	ID     uint64
	Kind   Kind
	State  State
	Reason string // failure reason, server-supplied, shown verbatim

	Query   QueryForm
	Process ProcessForm
}

// submit moves the dialog into the working state. Only legal from input.
func (d *Dialog) submit() bool {
	if d.State != StateInput {
		return false
	}
	d.State = StateWorking
	return true
}

// fail records the reason and moves to the failure state.
func (d *Dialog) fail(reason string) {
	d.State = StateFailure
	d.Reason = reason
}

// retry returns to input, preserving every previously entered field value.
func (d *Dialog) retry() bool {
	if d.State != StateFailure {
		return false
	}
	d.State = StateInput
	d.Reason = ""
	return true
}
