package reviewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/geoplat/locreview/internal/backend"
	"github.com/geoplat/locreview/internal/capability"
	"github.com/geoplat/locreview/internal/humastar"
	"github.com/geoplat/locreview/internal/workflow"
)

// DialogData is the view model of the workflow modal. Form values travel
// as page signals; the fragment only needs the state, titles and the
// query name list.
type DialogData struct {
	Open        bool
	Title       string
	Kind        string
	State       string
	Reason      string
	Names       []string
	NamesLoaded bool
	ImageAttach bool
}

// pushDialog renders the modal for the current controller snapshot. With
// no open dialog the fragment collapses to nothing, closing the modal.
func (h *Handlers) pushDialog(sse humastar.SSE) {
	var data DialogData
	if snap, ok := h.controller.Snapshot(); ok {
		data = DialogData{
			Open:        true,
			Title:       snap.Kind.Title(),
			Kind:        string(snap.Kind),
			State:       string(snap.State),
			Reason:      snap.Reason,
			Names:       snap.Query.Names,
			NamesLoaded: snap.Query.NamesLoaded,
			ImageAttach: h.caps.Supports(capability.FileReader),
		}
	}
	sse.Patch(h.Render("dialog", data), "#dialog")
}

// OpenQuery opens the query dialog, then loads the location name list and
// enables the selection control once it arrives. While any dialog is
// already open this is a no-op, leaving the open dialog untouched.
func (h *Handlers) OpenQuery(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if !h.controller.Open(workflow.KindQuery) {
			return
		}
		sse.Signals(map[string]any{"locationname": ""})
		h.pushDialog(sse) // disabled select while names load

		h.controller.LoadNames(ctx)
		if snap, ok := h.controller.Snapshot(); ok && snap.Query.LocationName != "" {
			sse.Signals(map[string]any{"locationname": snap.Query.LocationName})
		}
		h.pushDialog(sse)
	}), nil
}

// OpenProcess opens the process dialog with the radius pre-filled.
func (h *Handlers) OpenProcess(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if !h.controller.Open(workflow.KindProcess) {
			return
		}
		sse.Signals(map[string]any{
			"lat": "", "lon": "", "radius": backend.DefaultRadius, "surs": "",
			"image": []string{}, "imageMimes": []string{}, "imageNames": []string{},
		})
		h.pushDialog(sse)
	}), nil
}

// SubmitQuery drives input → working → {closed, failure} for the query
// dialog. The working modal is shown for the duration of the round trip.
func (h *Handlers) SubmitQuery(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	locationName := signals.String("locationname")

	return h.Stream(func(sse humastar.SSE) {
		h.submit(sse, func() error {
			return h.controller.SubmitQuery(ctx, locationName)
		})
	}), nil
}

// SubmitProcess drives the process dialog submission. The attached image
// arrives as datastar file-input signals and is re-encoded as a data URL.
func (h *Handlers) SubmitProcess(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}

	form := workflow.ProcessForm{
		Lat:    signals.String("lat"),
		Lon:    signals.String("lon"),
		Radius: signals.String("radius"),
		SURs:   signals.String("surs"),
	}
	if h.caps.Supports(capability.FileReader) {
		contents := stringList(signals, "image")
		mimes := stringList(signals, "imageMimes")
		names := stringList(signals, "imageNames")
		if len(contents) > 0 {
			mime := "application/octet-stream"
			if len(mimes) > 0 && mimes[0] != "" {
				mime = mimes[0]
			}
			form.ImageBase64 = "data:" + mime + ";base64," + contents[0]
			if len(names) > 0 {
				form.ImageName = names[0]
			}
		}
	}

	return h.Stream(func(sse humastar.SSE) {
		h.submit(sse, func() error {
			return h.controller.SubmitProcess(ctx, form)
		})
	}), nil
}

// submit shows the working modal, runs the blocking submission, then
// renders the outcome: the dialog closes itself on success (and the
// refreshed view follows), or shows the failure state with the server's
// reason.
func (h *Handlers) submit(sse humastar.SSE, run func() error) {
	if snap, ok := h.controller.Snapshot(); !ok || snap.State != workflow.StateInput {
		return // nothing submittable; never re-enter working
	}

	h.pushWorking(sse)

	if err := run(); err != nil {
		// Transition refused (dialog raced shut); just re-sync the modal.
		h.pushDialog(sse)
		return
	}

	if _, ok := h.controller.Snapshot(); !ok {
		// Success path: dialog closed, state replaced. Refresh this page
		// directly; other pages follow through the event stream.
		h.pushDialog(sse)
		h.pushMap(sse)
		sse.Signals(map[string]any{"viewversion": h.viewVersion.Add(1)})
		return
	}
	h.pushDialog(sse) // failure state
}

// pushWorking renders the working modal immediately so the page shows it
// during the round trip.
func (h *Handlers) pushWorking(sse humastar.SSE) {
	if snap, ok := h.controller.Snapshot(); ok && snap.State == workflow.StateInput {
		data := DialogData{
			Open:  true,
			Title: snap.Kind.Title(),
			Kind:  string(snap.Kind),
			State: string(workflow.StateWorking),
		}
		sse.Patch(h.Render("dialog", data), "#dialog")
	}
}

// Cancel closes the dialog from input with no side effect.
func (h *Handlers) Cancel(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.controller.Cancel()
		h.pushDialog(sse)
	}), nil
}

// Retry returns a failed dialog to input, restoring the entered values.
func (h *Handlers) Retry(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.controller.Retry(); err != nil {
			h.pushDialog(sse)
			return
		}
		if snap, ok := h.controller.Snapshot(); ok {
			switch snap.Kind {
			case workflow.KindQuery:
				sse.Signals(map[string]any{"locationname": snap.Query.LocationName})
			case workflow.KindProcess:
				sse.Signals(map[string]any{
					"lat":    snap.Process.Lat,
					"lon":    snap.Process.Lon,
					"radius": snap.Process.Radius,
					"surs":   snap.Process.SURs,
				})
			}
		}
		h.pushDialog(sse)
	}), nil
}

// Acknowledge closes a failed dialog, leaving the current state as it was.
func (h *Handlers) Acknowledge(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		h.controller.Acknowledge()
		h.pushDialog(sse)
	}), nil
}

// stringList reads a JSON string-array signal.
func stringList(s humastar.Signals, key string) []string {
	raw, ok := s[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
