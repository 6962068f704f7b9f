// Package overlay tracks which modal overlays of the console are visible.
package overlay

import (
	"sort"
	"sync"
)

// Key identifies an overlay.
type Key string

const (
	Login         Key = "login"
	Signup        Key = "signup"
	CreateBlog    Key = "create-blog"
	EditBlog      Key = "edit-blog"
	CreatePackage Key = "create-package"
	EditPackage   Key = "edit-package"
	ConfirmDelete Key = "confirm-delete"
	Profile       Key = "profile"
)

// ImagePicker returns the key of the picker overlay owned by screen.
func ImagePicker(screen string) Key {
	return Key("image-picker-" + screen)
}

// Store is the visibility flag of one overlay. The zero value is closed and
// usable.
type Store struct {
	mu       sync.Mutex
	open     bool
	onChange func(open bool)
}

// NewStore returns a closed store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Open() {
	s.set(true)
}

func (s *Store) Close() {
	s.set(false)
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) set(open bool) {
	s.mu.Lock()
	changed := s.open != open
	s.open = open
	hook := s.onChange
	s.mu.Unlock()
	if changed && hook != nil {
		hook(open)
	}
}

// Registry owns one Store per key.
type Registry struct {
	mu      sync.Mutex
	stores  map[Key]*Store
	active  Key
	subs    map[int]func(Key, bool)
	nextSub int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[Key]*Store), subs: make(map[int]func(Key, bool))}
}

// Store returns the store for key, creating it closed on first use.
func (r *Registry) Store(key Key) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeLocked(key)
}

func (r *Registry) storeLocked(key Key) *Store {
	if s, ok := r.stores[key]; ok {
		return s
	}
	s := &Store{}
	s.onChange = func(open bool) { r.changed(key, open) }
	r.stores[key] = s
	return s
}

func (r *Registry) Open(key Key) {
	r.Store(key).Open()
}

func (r *Registry) Close(key Key) {
	r.Store(key).Close()
}

func (r *Registry) IsOpen(key Key) bool {
	r.mu.Lock()
	s, ok := r.stores[key]
	r.mu.Unlock()
	return ok && s.IsOpen()
}

// OpenExclusive closes every other open overlay, then opens key.
func (r *Registry) OpenExclusive(key Key) {
	r.mu.Lock()
	target := r.storeLocked(key)
	others := make([]*Store, 0, len(r.stores))
	for k, s := range r.stores {
		if k != key {
			others = append(others, s)
		}
	}
	r.mu.Unlock()

	for _, s := range others {
		s.Close()
	}
	target.Open()

	r.mu.Lock()
	r.active = key
	r.mu.Unlock()
}

// Active reports the exclusively opened overlay. It is cleared when that
// overlay closes or another one opens.
func (r *Registry) Active() (Key, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == "" {
		return "", false
	}
	return r.active, true
}

// OpenKeys lists the open overlays in key order.
func (r *Registry) OpenKeys() []Key {
	r.mu.Lock()
	stores := make(map[Key]*Store, len(r.stores))
	for k, s := range r.stores {
		stores[k] = s
	}
	r.mu.Unlock()

	var keys []Key
	for k, s := range stores {
		if s.IsOpen() {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Subscribe registers fn for every visibility change and returns a function
// that removes it.
func (r *Registry) Subscribe(fn func(key Key, open bool)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Registry) changed(key Key, open bool) {
	r.mu.Lock()
	if r.active != "" && (r.active == key && !open || r.active != key && open) {
		r.active = ""
	}
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Key, bool), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, r.subs[id])
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(key, open)
	}
}
