package console

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"

	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/domain"
)

// fakeAPI is an in-memory backend implementing every console API.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]error
	nextID uint

	blogs    []client.Blog
	packages map[uint]*client.Package
	images   []client.Image
	profile  *client.UserDetail
	profiles []client.UserDetail
	ponds    []client.Pond

	lastQuery client.PageQuery
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{fail: map[string]error{}, packages: map[uint]*client.Package{}, nextID: 100}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeAPI) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) id() uint {
	f.nextID++
	return f.nextID
}

func pageOf[T any](items []T, q client.PageQuery) client.Page[T] {
	size := max(q.PageSize, 1)
	total := len(items)
	start := min(max(q.PageIndex-1, 0)*size, total)
	end := min(start+size, total)
	pages := (total + size - 1) / size
	return client.Page[T]{
		PageIndex:       q.PageIndex,
		TotalPages:      pages,
		TotalItems:      int64(total),
		HasPreviousPage: q.PageIndex > 1,
		HasNextPage:     q.PageIndex < pages,
		Datas:           slices.Clone(items[start:end]),
	}
}

func (f *fakeAPI) ListBlogs(_ context.Context, _ client.BlogScope, q client.PageQuery) (client.Page[client.Blog], error) {
	if err := f.record("ListBlogs"); err != nil {
		return client.Page[client.Blog]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	var out []client.Blog
	for _, b := range f.blogs {
		if s, ok := q.Filters["blogStatus"].(int); ok && int(b.Status) != s {
			continue
		}
		out = append(out, b)
	}
	return pageOf(out, q), nil
}

func (f *fakeAPI) SaveBlog(_ context.Context, req client.SaveBlog) (*client.Blog, error) {
	if err := f.record("SaveBlog"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := client.Blog{ID: req.ID, Title: req.Title, Content: req.Content, ImageIDs: slices.Clone(req.ImageIDs), Status: domain.StatusPending}
	if b.ID == 0 {
		b.ID = f.id()
		f.blogs = append(f.blogs, b)
		return &b, nil
	}
	for i := range f.blogs {
		if f.blogs[i].ID == b.ID {
			f.blogs[i] = b
		}
	}
	return &b, nil
}

func (f *fakeAPI) UpdateBlogStatus(_ context.Context, id uint, status domain.Status) error {
	if err := f.record("UpdateBlogStatus"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.blogs {
		if f.blogs[i].ID == id {
			f.blogs[i].Status = status
		}
	}
	return nil
}

func (f *fakeAPI) UploadImage(_ context.Context, filename string, r io.Reader) (*client.Image, error) {
	if err := f.record("UploadImage"); err != nil {
		return nil, err
	}
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	img := client.Image{ID: f.id(), FileName: filename, FilePath: "/uploads/" + filename, Size: int64(len(data))}
	f.images = append(f.images, img)
	return &img, nil
}

func (f *fakeAPI) ListImages(_ context.Context, q client.PageQuery) (client.Page[client.Image], error) {
	if err := f.record("ListImages"); err != nil {
		return client.Page[client.Image]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	return pageOf(f.images, q), nil
}

func (f *fakeAPI) DeleteImage(_ context.Context, _ uint) error {
	return f.record("DeleteImage")
}

func (f *fakeAPI) ListPackages(_ context.Context, q client.PageQuery) (client.Page[client.Package], error) {
	if err := f.record("ListPackages"); err != nil {
		return client.Page[client.Package]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	var out []client.Package
	for _, p := range f.packages {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b client.Package) int { return int(a.ID) - int(b.ID) })
	return pageOf(out, q), nil
}

func (f *fakeAPI) GetPackage(_ context.Context, id uint) (*client.Package, error) {
	if err := f.record("GetPackage"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[id]
	if !ok {
		return nil, &client.Error{Kind: client.KindBusiness, Status: http.StatusNotFound, Message: "Package not found"}
	}
	cp := *p
	cp.ImageIDs = slices.Clone(p.ImageIDs)
	return &cp, nil
}

func (f *fakeAPI) SavePackage(_ context.Context, req client.SavePackage) (*client.Package, error) {
	if err := f.record("SavePackage"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := req.ID
	if id == 0 {
		id = f.id()
	} else if _, ok := f.packages[id]; !ok {
		return nil, &client.Error{Kind: client.KindBusiness, Status: http.StatusNotFound, Message: "Package not found"}
	}
	p := &client.Package{ID: id, Name: req.Name, Price: req.Price, LimitImage: req.LimitImage, ImageIDs: slices.Clone(req.ImageIDs)}
	f.packages[id] = p
	cp := *p
	return &cp, nil
}

func (f *fakeAPI) AddPackageImages(_ context.Context, id uint, ids []uint) error {
	if err := f.record(fmt.Sprintf("AddPackageImages %v", ids)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.packages[id]
	for _, i := range ids {
		if !slices.Contains(p.ImageIDs, i) {
			p.ImageIDs = append(p.ImageIDs, i)
		}
	}
	return nil
}

func (f *fakeAPI) RemovePackageImages(_ context.Context, id uint, ids []uint) error {
	if err := f.record(fmt.Sprintf("RemovePackageImages %v", ids)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.packages[id]
	p.ImageIDs = slices.DeleteFunc(p.ImageIDs, func(i uint) bool { return slices.Contains(ids, i) })
	return nil
}

func (f *fakeAPI) MyUserDetail(_ context.Context) (*client.UserDetail, error) {
	if err := f.record("MyUserDetail"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return nil, &client.Error{Kind: client.KindBusiness, Status: http.StatusBadRequest, Message: "Please update your profile"}
	}
	cp := *f.profile
	return &cp, nil
}

func (f *fakeAPI) SaveUserDetail(_ context.Context, req client.SaveUserDetail) (*client.UserDetail, error) {
	if err := f.record("SaveUserDetail"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := client.UserDetail{FullName: req.FullName, Gender: req.Gender, ImageID: req.ImageID}
	f.profile = &d
	cp := d
	return &cp, nil
}

func (f *fakeAPI) ListUserDetails(_ context.Context, q client.PageQuery) (client.Page[client.UserDetail], error) {
	if err := f.record("ListUserDetails"); err != nil {
		return client.Page[client.UserDetail]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	return pageOf(f.profiles, q), nil
}

func (f *fakeAPI) ListPonds(_ context.Context) ([]client.Pond, error) {
	if err := f.record("ListPonds"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ponds), nil
}

func (f *fakeAPI) AddPond(_ context.Context, req client.SavePond) (*client.Pond, error) {
	if err := f.record("AddPond"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := client.Pond{ID: f.id(), PondName: req.PondName, Quantity: req.Quantity}
	f.ponds = append(f.ponds, p)
	return &p, nil
}

func (f *fakeAPI) UpdatePond(_ context.Context, id uint, req client.SavePond) (*client.Pond, error) {
	if err := f.record("UpdatePond"); err != nil {
		return nil, err
	}
	p := client.Pond{ID: id, PondName: req.PondName, Quantity: req.Quantity}
	return &p, nil
}

func (f *fakeAPI) DeletePond(_ context.Context, id uint) error {
	if err := f.record("DeletePond"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ponds = slices.DeleteFunc(f.ponds, func(p client.Pond) bool { return p.ID == id })
	return nil
}
