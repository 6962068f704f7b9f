package console

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/overlay"
	"github.com/simp-lee/koiconsult/internal/paging"
)

// PickerPageSize is the number of library images shown per picker page.
const PickerPageSize = 6

// ImagePicker lets the member choose images from their library. It only
// fetches while its overlay is open.
type ImagePicker struct {
	store    *overlay.Store
	list     *paging.Controller[client.Image]
	onSelect func([]client.Image)

	mu       sync.Mutex
	selected []client.Image
}

// NewImagePicker returns a closed picker. onSelect receives the selection
// on Save.
func NewImagePicker(api ImageAPI, store *overlay.Store, n notify.Notifier, onSelect func([]client.Image)) *ImagePicker {
	if store == nil {
		store = overlay.NewStore()
	}
	return &ImagePicker{
		store: store,
		list: paging.New(api.ListImages,
			paging.WithPageSize(PickerPageSize),
			paging.WithNotifier(n),
			paging.WithFilters(map[string]any{"orderDate": "desc"}),
		),
		onSelect: onSelect,
	}
}

// Open shows the picker with an empty selection and loads the current page.
func (p *ImagePicker) Open(ctx context.Context) error {
	p.mu.Lock()
	p.selected = nil
	p.mu.Unlock()
	p.store.Open()
	return p.list.Refetch(ctx)
}

// Close hides the picker without selecting anything.
func (p *ImagePicker) Close() {
	p.store.Close()
}

func (p *ImagePicker) IsOpen() bool {
	return p.store.IsOpen()
}

// State returns the picker's page.
func (p *ImagePicker) State() paging.State[client.Image] {
	return p.list.State()
}

func (p *ImagePicker) SetPage(ctx context.Context, n int) error {
	if !p.IsOpen() {
		return nil
	}
	return p.list.SetPage(ctx, n)
}

func (p *ImagePicker) NextPage(ctx context.Context) error {
	if !p.IsOpen() {
		return nil
	}
	return p.list.NextPage(ctx)
}

func (p *ImagePicker) PreviousPage(ctx context.Context) error {
	if !p.IsOpen() {
		return nil
	}
	return p.list.PreviousPage(ctx)
}

// Search filters the library by file name.
func (p *ImagePicker) Search(ctx context.Context, name string) error {
	if !p.IsOpen() {
		return nil
	}
	var v any
	if n := strings.TrimSpace(name); n != "" {
		v = n
	}
	return p.list.SetFilter(ctx, map[string]any{"name": v})
}

// Toggle adds img to the selection, or removes it when already selected.
func (p *ImagePicker) Toggle(img client.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.IndexFunc(p.selected, func(s client.Image) bool { return s.ID == img.ID }); i >= 0 {
		p.selected = slices.Delete(p.selected, i, i+1)
		return
	}
	p.selected = append(p.selected, img)
}

// Selected returns the current selection in toggle order.
func (p *ImagePicker) Selected() []client.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.selected)
}

// Save hands the selection, possibly empty, to onSelect and closes.
func (p *ImagePicker) Save() {
	selected := p.Selected()
	if p.onSelect != nil {
		p.onSelect(selected)
	}
	p.mu.Lock()
	p.selected = nil
	p.mu.Unlock()
	p.store.Close()
}
