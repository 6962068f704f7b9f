// Package attach stages image changes against a parent object (a blog or an
// advertisement package) and submits them as one ordered pipeline.
package attach

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Flow selects how staged changes combine.
type Flow int

const (
	// Create builds a new parent. The latest upload and the latest picker
	// selection replace earlier ones.
	Create Flow = iota
	// Edit changes an existing parent. Uploads and picks accumulate.
	Edit
)

func (f Flow) String() string {
	if f == Edit {
		return "edit"
	}
	return "create"
}

// File is a local file staged for upload.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FromPath stages the file at path.
func FromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Attachment is an image already known to the server.
type Attachment struct {
	ID  uint
	URL string
}

// Delta is a snapshot of the staged changes.
type Delta struct {
	ToUpload []File
	ToAttach []Attachment // uploaded first, then picked
	ToDetach []uint
}

// Empty reports whether nothing is staged.
func (d Delta) Empty() bool {
	return len(d.ToUpload) == 0 && len(d.ToAttach) == 0 && len(d.ToDetach) == 0
}

// Reconciler accumulates the attachment changes of one editor session.
type Reconciler struct {
	flow Flow

	mu       sync.Mutex
	existing []uint
	staged   []File
	uploaded []Attachment
	picked   []Attachment
	detach   []uint
}

// New returns a reconciler for a parent currently holding existing.
func New(flow Flow, existing []uint) *Reconciler {
	return &Reconciler{flow: flow, existing: dedup(existing)}
}

func (r *Reconciler) Flow() Flow {
	return r.flow
}

// Existing returns the ids the parent held when the session began.
func (r *Reconciler) Existing() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.existing)
}

// AddUploaded stages a local file. In the create flow it replaces the
// previous file, including one already uploaded by a failed submit.
func (r *Reconciler) AddUploaded(f File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flow == Create {
		r.staged = []File{f}
		r.uploaded = nil
		return
	}
	r.staged = append(r.staged, f)
}

// AddExisting stages picked library images. The create flow replaces the
// previous selection; the edit flow appends, skipping known ids.
func (r *Reconciler) AddExisting(atts []Attachment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flow == Create {
		r.picked = nil
	}
	for _, a := range atts {
		if !containsAttachment(r.picked, a.ID) {
			r.picked = append(r.picked, a)
		}
	}
}

// MarkForRemoval stages id for detaching.
func (r *Reconciler) MarkForRemoval(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.detach, id) {
		r.detach = append(r.detach, id)
	}
}

// Unmark undoes MarkForRemoval.
func (r *Reconciler) Unmark(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detach = slices.DeleteFunc(r.detach, func(v uint) bool { return v == id })
}

// Marked reports whether id is staged for detaching.
func (r *Reconciler) Marked(id uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.detach, id)
}

// Delta returns the staged changes.
func (r *Reconciler) Delta() Delta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Delta{
		ToUpload: slices.Clone(r.staged),
		ToAttach: append(slices.Clone(r.uploaded), r.picked...),
		ToDetach: slices.Clone(r.detach),
	}
}

// ResolveFinalIDList returns existing followed by uploaded and then the
// picked ids, without the ids marked for removal. Order is kept and
// duplicates are dropped.
func (r *Reconciler) ResolveFinalIDList(existing, uploaded []uint) []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(existing, uploaded)
}

func (r *Reconciler) resolveLocked(existing, uploaded []uint) []uint {
	out := make([]uint, 0, len(existing)+len(uploaded)+len(r.picked))
	out = append(out, existing...)
	out = append(out, uploaded...)
	for _, a := range r.picked {
		out = append(out, a.ID)
	}
	out = slices.DeleteFunc(out, func(id uint) bool { return slices.Contains(r.detach, id) })
	return dedup(out)
}

// Reset drops every staged change and rebases on existing.
func (r *Reconciler) Reset(existing []uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existing = dedup(existing)
	r.staged = nil
	r.uploaded = nil
	r.picked = nil
	r.detach = nil
}

func dedup(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func containsAttachment(atts []Attachment, id uint) bool {
	return slices.ContainsFunc(atts, func(a Attachment) bool { return a.ID == id })
}

func attachmentIDs(atts []Attachment) []uint {
	ids := make([]uint, len(atts))
	for i, a := range atts {
		ids[i] = a.ID
	}
	return ids
}
