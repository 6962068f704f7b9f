package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/simp-lee/koiconsult/internal/attach"
	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/paging"
)

func packageID(p client.Package) uint { return p.ID }

// AdPackageList pages over the advertisement packages.
type AdPackageList struct {
	*paging.Controller[client.Package]
}

func NewAdPackageList(api PackageAPI, n notify.Notifier, pageSize int) *AdPackageList {
	return &AdPackageList{Controller: paging.New(api.ListPackages,
		paging.WithPageSize(pageSize),
		paging.WithNotifier(n),
	)}
}

// Search filters by name and an upper price bound. Zero values clear the
// respective filter.
func (l *AdPackageList) Search(ctx context.Context, name string, maxPrice float64) error {
	patch := map[string]any{"name": nil, "priceFilter": nil}
	if n := strings.TrimSpace(name); n != "" {
		patch["name"] = n
	}
	if maxPrice > 0 {
		patch["priceFilter"] = maxPrice
	}
	return l.SetFilter(ctx, patch)
}

// PackageForm is the editable part of a package.
type PackageForm struct {
	Name         string
	Price        float64
	Description  string
	LimitAd      int
	LimitContent int
	LimitImage   int
	IsActive     *bool
}

// FormOf returns the form prefilled from p.
func FormOf(p client.Package) PackageForm {
	active := p.IsActive
	return PackageForm{
		Name:         p.Name,
		Price:        p.Price,
		Description:  p.Description,
		LimitAd:      p.LimitAd,
		LimitContent: p.LimitContent,
		LimitImage:   p.LimitImage,
		IsActive:     &active,
	}
}

// AdPackageEditor creates and edits advertisement packages. Admin only.
type AdPackageEditor struct {
	api      PackageAPI
	images   ImageAPI
	notifier notify.Notifier
	list     *paging.Controller[client.Package]

	current *client.Package
	rec     *attach.Reconciler
}

// NewAdPackageEditor returns an editor in the create flow.
func NewAdPackageEditor(api PackageAPI, images ImageAPI, n notify.Notifier, list *paging.Controller[client.Package]) *AdPackageEditor {
	return &AdPackageEditor{api: api, images: images, notifier: n, list: list, rec: attach.New(attach.Create, nil)}
}

// Load switches the editor to the edit flow of package id.
func (e *AdPackageEditor) Load(ctx context.Context, id uint) (*client.Package, error) {
	p, err := e.api.GetPackage(ctx, id)
	if err != nil {
		return nil, fail(e.notifier, err)
	}
	e.current = p
	e.rec = attach.New(attach.Edit, p.ImageIDs)
	return p, nil
}

// Current returns the package being edited, or nil in the create flow.
func (e *AdPackageEditor) Current() *client.Package {
	return e.current
}

func (e *AdPackageEditor) Attachments() *attach.Reconciler {
	return e.rec
}

// Submit runs the attachment pipeline. In the edit flow new images are
// attached before the update and removed ones detached after it; the
// package is reloaded once everything succeeded.
func (e *AdPackageEditor) Submit(ctx context.Context, form PackageForm) (*client.Package, error) {
	if strings.TrimSpace(form.Name) == "" {
		return nil, fail(e.notifier, client.Precondition("Please enter a package name"))
	}
	if form.LimitImage > 0 {
		d := e.rec.Delta()
		count := len(e.rec.ResolveFinalIDList(e.rec.Existing(), attachIDs(d.ToAttach))) + len(d.ToUpload)
		if count > form.LimitImage {
			return nil, fail(e.notifier, client.Precondition(fmt.Sprintf("A package can have at most %d images", form.LimitImage)))
		}
	}

	var id uint
	if e.current != nil {
		id = e.current.ID
	}
	var saved *client.Package
	pipeline := attach.Pipeline{
		Upload: uploader(e.images),
		Save: func(ctx context.Context, ids []uint) error {
			p, err := e.api.SavePackage(ctx, client.SavePackage{
				ID:           id,
				Name:         form.Name,
				Price:        form.Price,
				Description:  form.Description,
				LimitAd:      form.LimitAd,
				LimitContent: form.LimitContent,
				LimitImage:   form.LimitImage,
				ImageIDs:     ids,
				IsActive:     form.IsActive,
			})
			if err != nil {
				return err
			}
			saved = p
			return nil
		},
	}
	if id != 0 {
		pipeline.Attach = func(ctx context.Context, ids []uint) error { return e.api.AddPackageImages(ctx, id, ids) }
		pipeline.Detach = func(ctx context.Context, ids []uint) error { return e.api.RemovePackageImages(ctx, id, ids) }
	}

	if _, err := e.rec.Submit(ctx, pipeline); err != nil {
		return nil, fail(e.notifier, err)
	}

	if e.list != nil {
		e.list.Patch(func(items []client.Package) []client.Package { return upsert(items, *saved, packageID) })
	}
	notify.Success(e.notifier, "Package saved")

	reloaded, err := e.api.GetPackage(ctx, saved.ID)
	if err != nil {
		notify.Error(e.notifier, err)
		reloaded = saved
	}
	e.current = reloaded
	e.rec = attach.New(attach.Edit, reloaded.ImageIDs)
	refresh(ctx, e.list)
	return reloaded, nil
}

func attachIDs(atts []attach.Attachment) []uint {
	ids := make([]uint, len(atts))
	for i, a := range atts {
		ids[i] = a.ID
	}
	return ids
}
