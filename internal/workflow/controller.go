package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/geoplat/locreview/internal/backend"
	"github.com/geoplat/locreview/internal/service"
)

// Backend is the slice of the backend client the controller needs. Tests
// drive the machine with a fake implementation.
type Backend interface {
	QueryLocationNames(ctx context.Context) ([]string, error)
	QueryLocation(ctx context.Context, locationName string) (*service.LocationResponse, error)
	ProcessLocation(ctx context.Context, req backend.ProcessRequest) (*service.LocationResponse, error)
}

var (
	// ErrNoDialog is returned when an action needs an open dialog.
	ErrNoDialog = errors.New("no open dialog")
	// ErrBadState is returned for transitions illegal in the current state.
	ErrBadState = errors.New("action not valid in current dialog state")
)

// Controller owns the single open dialog and serializes all workflow
// transitions. On a successful submission it replaces the response store
// and runs the ordered refresh fan-out before closing the dialog.
type Controller struct {
	backend   Backend
	store     *service.ResponseStore
	refresher *service.Refresher
	bus       *service.EventBus

	mu     sync.Mutex
	dialog *Dialog
	seq    uint64
}

// NewController creates a workflow controller. bus may be nil when no SSE
// listeners exist (tests).
func NewController(b Backend, store *service.ResponseStore, refresher *service.Refresher, bus *service.EventBus) *Controller {
	return &Controller{backend: b, store: store, refresher: refresher, bus: bus}
}

// Open opens a dialog of the given kind in the input state. It reports
// false, leaving the open dialog untouched, when any dialog is already
// open — this is also what suppresses the Enter shortcut while a modal
// is up.
func (c *Controller) Open(kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog != nil {
		return false
	}

	c.seq++
	d := &Dialog{ID: c.seq, Kind: kind, State: StateInput}
	if kind == KindProcess {
		d.Process.Radius = backend.DefaultRadius
	}
	c.dialog = d
	return true
}

// Snapshot returns a copy of the open dialog for rendering, or false when
// no dialog is open.
func (c *Controller) Snapshot() (Dialog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == nil {
		return Dialog{}, false
	}
	d := *c.dialog
	d.Query.Names = append([]string(nil), c.dialog.Query.Names...)
	return d, true
}

// LoadNames fetches the location name list for an open query dialog and
// enables its selection control. When the current response's name appears
// in the list it is pre-selected. A load error leaves the list empty but
// still enables the control, matching the original behavior.
func (c *Controller) LoadNames(ctx context.Context) {
	c.mu.Lock()
	if c.dialog == nil || c.dialog.Kind != KindQuery {
		c.mu.Unlock()
		return
	}
	id := c.dialog.ID
	c.mu.Unlock()

	names, err := c.backend.QueryLocationNames(ctx)
	if err != nil {
		names = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog == nil || c.dialog.ID != id || c.dialog.State != StateInput {
		return // dialog gone or already submitting
	}
	c.dialog.Query.Names = names
	c.dialog.Query.NamesLoaded = true
	if c.dialog.Query.LocationName == "" {
		if cur := c.store.Get(); cur != nil {
			for _, n := range names {
				if n == cur.Name {
					c.dialog.Query.LocationName = n
					break
				}
			}
		}
	}
}

// SubmitQuery submits the query dialog. Blocks for the backend round trip;
// on return the dialog is either closed (success) or in the failure state.
func (c *Controller) SubmitQuery(ctx context.Context, locationName string) error {
	id, err := c.enterWorking(KindQuery, func(d *Dialog) {
		d.Query.LocationName = locationName
	})
	if err != nil {
		return err
	}

	resp, err := c.backend.QueryLocation(ctx, locationName)
	c.resolve(id, resp, err)
	return nil
}

// SubmitProcess submits the process dialog. Field values are captured
// before the round trip so a later retry restores them.
func (c *Controller) SubmitProcess(ctx context.Context, form ProcessForm) error {
	if form.Radius == "" {
		form.Radius = backend.DefaultRadius
	}
	id, err := c.enterWorking(KindProcess, func(d *Dialog) {
		d.Process = form
	})
	if err != nil {
		return err
	}

	resp, err := c.backend.ProcessLocation(ctx, backend.ProcessRequest{
		Lat:         form.Lat,
		Lon:         form.Lon,
		Radius:      form.Radius,
		SURs:        form.SURs,
		ImageBase64: form.ImageBase64,
	})
	c.resolve(id, resp, err)
	return nil
}

// enterWorking captures the submitted form and transitions input → working
// under the lock. At most one request is ever in flight per dialog because
// working rejects further submits.
func (c *Controller) enterWorking(kind Kind, capture func(*Dialog)) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == nil {
		return 0, ErrNoDialog
	}
	if c.dialog.Kind != kind {
		return 0, ErrBadState
	}
	capture(c.dialog)
	if !c.dialog.submit() {
		return 0, ErrBadState
	}
	return c.dialog.ID, nil
}

// resolve applies the outcome of a backend round trip. A completion for a
// dialog instance that is no longer open is discarded: a stale success
// never mutates the store and a stale failure never re-opens the dialog.
func (c *Controller) resolve(id uint64, resp *service.LocationResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == nil || c.dialog.ID != id {
		return
	}

	if err != nil {
		var remote *backend.RemoteError
		if errors.As(err, &remote) {
			c.dialog.fail(remote.Reason)
		} else {
			c.dialog.fail(err.Error())
		}
		return
	}

	// Store update happens-before the dependent re-renders, as one
	// ordered sequence under the controller lock.
	c.store.Set(resp)
	c.refresher.ResponseChanged(resp)
	if c.bus != nil {
		c.bus.Publish(service.Event{Resource: "response", Name: resp.Name})
	}
	c.dialog = nil
}

// Cancel closes the dialog from the input state with no side effect.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == nil {
		return ErrNoDialog
	}
	if c.dialog.State != StateInput {
		return ErrBadState
	}
	c.dialog = nil
	return nil
}

// Close abandons the dialog regardless of state (modal dismissed while a
// request is still in flight). The in-flight request is not cancelled at
// the transport level; its completion is discarded by resolve.
func (c *Controller) Close() {
	c.mu.Lock()
	c.dialog = nil
	c.mu.Unlock()
}

// Retry returns a failed dialog to the input state, preserving every
// previously entered field value.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == nil {
		return ErrNoDialog
	}
	if !c.dialog.retry() {
		return ErrBadState
	}
	return nil
}

// Acknowledge closes a failed dialog, leaving the response store unchanged.
func (c *Controller) Acknowledge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialog == nil {
		return ErrNoDialog
	}
	if c.dialog.State != StateFailure {
		return ErrBadState
	}
	c.dialog = nil
	return nil
}
