package console

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/overlay"
)

// PondList holds the member's ponds. Deletes go through a confirmation
// overlay.
type PondList struct {
	api      PondAPI
	notifier notify.Notifier
	confirm  *overlay.Store

	mu      sync.Mutex
	ponds   []client.Pond
	pending uint
}

func NewPondList(api PondAPI, confirm *overlay.Store, n notify.Notifier) *PondList {
	if confirm == nil {
		confirm = overlay.NewStore()
	}
	return &PondList{api: api, notifier: n, confirm: confirm}
}

// Load replaces the list with the server's.
func (l *PondList) Load(ctx context.Context) error {
	ponds, err := l.api.ListPonds(ctx)
	if err != nil {
		return fail(l.notifier, err)
	}
	l.mu.Lock()
	l.ponds = ponds
	l.mu.Unlock()
	return nil
}

func (l *PondList) Ponds() []client.Pond {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.ponds)
}

// Add creates a pond. Names are unique per member, ignoring case.
func (l *PondList) Add(ctx context.Context, req client.SavePond) (*client.Pond, error) {
	if err := l.check(0, req); err != nil {
		return nil, fail(l.notifier, err)
	}
	p, err := l.api.AddPond(ctx, req)
	if err != nil {
		return nil, fail(l.notifier, err)
	}
	l.mu.Lock()
	l.ponds = append([]client.Pond{*p}, l.ponds...)
	l.mu.Unlock()
	notify.Success(l.notifier, "Pond added")
	return p, nil
}

// Update saves changes to pond id.
func (l *PondList) Update(ctx context.Context, id uint, req client.SavePond) (*client.Pond, error) {
	if l.index(id) < 0 {
		return nil, fail(l.notifier, client.Precondition("Pond not found"))
	}
	if err := l.check(id, req); err != nil {
		return nil, fail(l.notifier, err)
	}
	p, err := l.api.UpdatePond(ctx, id, req)
	if err != nil {
		return nil, fail(l.notifier, err)
	}
	l.mu.Lock()
	if i := slices.IndexFunc(l.ponds, func(x client.Pond) bool { return x.ID == id }); i >= 0 {
		l.ponds[i] = *p
	}
	l.mu.Unlock()
	notify.Success(l.notifier, "Pond updated")
	return p, nil
}

// RequestDelete opens the confirmation for pond id.
func (l *PondList) RequestDelete(id uint) error {
	if l.index(id) < 0 {
		return fail(l.notifier, client.Precondition("Nothing to delete"))
	}
	l.mu.Lock()
	l.pending = id
	l.mu.Unlock()
	l.confirm.Open()
	return nil
}

// CancelDelete closes the confirmation.
func (l *PondList) CancelDelete() {
	l.mu.Lock()
	l.pending = 0
	l.mu.Unlock()
	l.confirm.Close()
}

// ConfirmDelete deletes the pond chosen by RequestDelete.
func (l *PondList) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	id := l.pending
	l.mu.Unlock()
	if id == 0 || !l.confirm.IsOpen() {
		return fail(l.notifier, client.Precondition("Nothing to delete"))
	}
	if err := l.api.DeletePond(ctx, id); err != nil {
		return fail(l.notifier, err)
	}
	l.mu.Lock()
	l.ponds = slices.DeleteFunc(l.ponds, func(p client.Pond) bool { return p.ID == id })
	l.pending = 0
	l.mu.Unlock()
	l.confirm.Close()
	notify.Success(l.notifier, "Pond deleted")
	return nil
}

func (l *PondList) index(id uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.IndexFunc(l.ponds, func(p client.Pond) bool { return p.ID == id })
}

// check validates req against the other ponds; self is the pond being
// edited, 0 when adding.
func (l *PondList) check(self uint, req client.SavePond) error {
	name := strings.TrimSpace(req.PondName)
	if name == "" {
		return client.Precondition("Please enter a pond name")
	}
	if req.Quantity < 0 {
		return client.Precondition("Quantity must not be negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.ponds {
		if p.ID != self && strings.EqualFold(strings.TrimSpace(p.PondName), name) {
			return client.Precondition(fmt.Sprintf("You already have a pond named %q", name))
		}
	}
	return nil
}
