package attach

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Step names a stage of the submit pipeline.
type Step string

const (
	StepUpload Step = "upload"
	StepAttach Step = "attach"
	StepCreate Step = "create"
	StepUpdate Step = "update"
	StepDetach Step = "detach"
)

// StepError reports the step that halted a submit and whether the attach
// step was undone.
type StepError struct {
	Step            Step
	Err             error
	Compensated     bool
	CompensationErr error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("attach: %s failed: %v", e.Step, e.Err)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf(" (undo attach failed: %v)", e.CompensationErr)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

var (
	errNoSave     = errors.New("attach: pipeline has no save step")
	errNoUploader = errors.New("no uploader configured")
	errNoDetach   = errors.New("no detach step to undo attach")
)

// Pipeline holds the calls a submit makes. Save is required; Attach and
// Detach may be nil when Save alone replaces the parent's image list.
type Pipeline struct {
	Upload func(ctx context.Context, f File) (Attachment, error)
	Attach func(ctx context.Context, ids []uint) error
	Save   func(ctx context.Context, ids []uint) error
	Detach func(ctx context.Context, ids []uint) error

	// NoCompensation leaves attached images in place when a later step
	// fails.
	NoCompensation bool
}

// Result describes a successful submit.
type Result struct {
	IDs      []uint       // the parent's image list as saved
	Uploaded []Attachment // images created by this submit
}

// Submit runs upload, attach, create or update, then detach. A failing step
// halts the rest and is returned as *StepError. Files uploaded before a
// failure stay staged as attachments so a retry does not upload them again.
// On success the reconciler is rebased on the saved list.
func (r *Reconciler) Submit(ctx context.Context, p Pipeline) (Result, error) {
	if p.Save == nil {
		return Result{}, errNoSave
	}
	if err := r.uploadStaged(ctx, p.Upload); err != nil {
		return Result{}, &StepError{Step: StepUpload, Err: err}
	}

	r.mu.Lock()
	uploaded := slices.Clone(r.uploaded)
	final := r.resolveLocked(r.existing, attachmentIDs(r.uploaded))
	var toAttach, toDetach []uint
	if r.flow == Edit {
		for _, id := range dedup(append(attachmentIDs(r.uploaded), attachmentIDs(r.picked)...)) {
			if !slices.Contains(r.existing, id) && slices.Contains(final, id) {
				toAttach = append(toAttach, id)
			}
		}
		for _, id := range r.detach {
			if slices.Contains(r.existing, id) && !slices.Contains(final, id) {
				toDetach = append(toDetach, id)
			}
		}
	}
	r.mu.Unlock()

	var attached []uint
	if len(toAttach) > 0 && p.Attach != nil {
		if err := p.Attach(ctx, toAttach); err != nil {
			return Result{}, &StepError{Step: StepAttach, Err: err}
		}
		attached = toAttach
	}

	saveStep := StepCreate
	if r.flow == Edit {
		saveStep = StepUpdate
	}
	if err := p.Save(ctx, final); err != nil {
		return Result{}, r.compensate(ctx, p, saveStep, err, attached)
	}

	if len(toDetach) > 0 && p.Detach != nil {
		if err := p.Detach(ctx, toDetach); err != nil {
			return Result{}, r.compensate(ctx, p, StepDetach, err, attached)
		}
	}

	r.Reset(final)
	return Result{IDs: final, Uploaded: uploaded}, nil
}

func (r *Reconciler) uploadStaged(ctx context.Context, upload func(context.Context, File) (Attachment, error)) error {
	for {
		r.mu.Lock()
		if len(r.staged) == 0 {
			r.mu.Unlock()
			return nil
		}
		f := r.staged[0]
		r.mu.Unlock()

		if upload == nil {
			return errNoUploader
		}
		att, err := upload(ctx, f)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}

		r.mu.Lock()
		r.staged = r.staged[1:]
		if !containsAttachment(r.uploaded, att.ID) {
			r.uploaded = append(r.uploaded, att)
		}
		r.mu.Unlock()
	}
}

// compensate undoes the attach step after step failed with err. The undo
// is a separate Detach call for the attached ids, also when the detach step
// itself is the one that failed.
func (r *Reconciler) compensate(ctx context.Context, p Pipeline, step Step, err error, attached []uint) error {
	se := &StepError{Step: step, Err: err}
	if p.NoCompensation || len(attached) == 0 {
		return se
	}
	if p.Detach == nil {
		se.CompensationErr = errNoDetach
		return se
	}
	if cerr := p.Detach(context.WithoutCancel(ctx), attached); cerr != nil {
		se.CompensationErr = cerr
		return se
	}
	se.Compensated = true
	return se
}
