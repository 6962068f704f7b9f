package blog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
)

type mockBlogRepo struct {
	blogs      map[uint]*domain.Blog
	attached   map[uint][]uint
	nextID     uint
	listReq    domain.PageRequest
	statusByID map[uint]domain.Status
}

func newMockBlogRepo() *mockBlogRepo {
	return &mockBlogRepo{
		blogs:      make(map[uint]*domain.Blog),
		attached:   make(map[uint][]uint),
		nextID:     1,
		statusByID: make(map[uint]domain.Status),
	}
}

func (m *mockBlogRepo) Create(_ context.Context, b *domain.Blog, ids []uint) error {
	b.ID = m.nextID
	m.nextID++
	cp := *b
	m.blogs[b.ID] = &cp
	m.attached[b.ID] = ids
	return nil
}

func (m *mockBlogRepo) Update(_ context.Context, b *domain.Blog, ids []uint) error {
	cp := *b
	m.blogs[b.ID] = &cp
	m.attached[b.ID] = ids
	return nil
}

func (m *mockBlogRepo) GetByID(_ context.Context, id uint) (*domain.Blog, error) {
	b, ok := m.blogs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBlogRepo) List(_ context.Context, req domain.PageRequest) (*domain.PageResult[domain.Blog], error) {
	m.listReq = req
	return &domain.PageResult[domain.Blog]{PageIndex: req.Page, TotalPages: 1, Datas: []domain.Blog{}}, nil
}

func (m *mockBlogRepo) UpdateStatus(_ context.Context, id uint, status domain.Status) error {
	if _, ok := m.blogs[id]; !ok {
		return domain.ErrNotFound
	}
	m.statusByID[id] = status
	return nil
}

type mockImageRepo struct {
	images map[uint]domain.Image
}

func (m *mockImageRepo) Create(context.Context, *domain.Image) error { return nil }
func (m *mockImageRepo) GetByID(_ context.Context, id uint) (*domain.Image, error) {
	img, ok := m.images[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &img, nil
}
func (m *mockImageRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.Image, error) {
	var out []domain.Image
	for _, id := range ids {
		if img, ok := m.images[id]; ok {
			out = append(out, img)
		}
	}
	return out, nil
}
func (m *mockImageRepo) ListByUser(context.Context, uint, domain.PageRequest) (*domain.PageResult[domain.Image], error) {
	return nil, nil
}
func (m *mockImageRepo) Delete(context.Context, uint) error                { return nil }
func (m *mockImageRepo) IsReferenced(context.Context, uint) (bool, error) { return false, nil }
func (m *mockImageRepo) ListOrphans(context.Context, time.Time, int) ([]domain.Image, error) {
	return nil, nil
}

var (
	alice = domain.Principal{UserID: 1, UserName: "alice", Role: domain.RoleMember}
	bob   = domain.Principal{UserID: 2, UserName: "bob", Role: domain.RoleMember}
	admin = domain.Principal{UserID: 9, UserName: "root", Role: domain.RoleAdmin}
)

func newTestService() (*blogService, *mockBlogRepo) {
	repo := newMockBlogRepo()
	images := &mockImageRepo{images: map[uint]domain.Image{
		10: {BaseModel: domain.BaseModel{ID: 10}, UserID: 1},
		11: {BaseModel: domain.BaseModel{ID: 11}, UserID: 1},
		20: {BaseModel: domain.BaseModel{ID: 20}, UserID: 2},
	}}
	return NewBlogService(repo, images).(*blogService), repo
}

func TestSave_Create(t *testing.T) {
	svc, repo := newTestService()

	b, err := svc.Save(context.Background(), alice, domain.SaveBlogInput{
		Title:    "  <b>Koi</b> care ",
		Content:  `<p>Feed twice a day</p><script>alert(1)</script>`,
		ImageIDs: []uint{11, 10, 11},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if b.ID == 0 || b.UserID != 1 || b.UserName != "alice" || b.Status != domain.StatusPending {
		t.Errorf("created blog = %+v", b)
	}
	if b.Title != "Koi care" {
		t.Errorf("title = %q", b.Title)
	}
	if strings.Contains(b.Content, "script") {
		t.Errorf("content not sanitized: %q", b.Content)
	}
	if got := repo.attached[b.ID]; len(got) != 2 || got[0] != 11 || got[1] != 10 {
		t.Errorf("attached = %v, want [11 10]", got)
	}
}

func TestSave_UpdateResetsToPending(t *testing.T) {
	svc, repo := newTestService()
	b, _ := svc.Save(context.Background(), alice, domain.SaveBlogInput{Title: "t", Content: "c"})
	repo.blogs[b.ID].Status = domain.StatusApproved

	updated, err := svc.Save(context.Background(), alice, domain.SaveBlogInput{ID: b.ID, Title: "t2", Content: "c2", ImageIDs: []uint{10}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if updated.Title != "t2" || updated.Status != domain.StatusPending {
		t.Errorf("updated = %+v", updated)
	}
}

func TestSave_Errors(t *testing.T) {
	tests := []struct {
		name   string
		author domain.Principal
		in     func(existing uint) domain.SaveBlogInput
		check  func(error) bool
	}{
		{
			name:   "empty title",
			author: alice,
			in:     func(uint) domain.SaveBlogInput { return domain.SaveBlogInput{Title: "<i></i>", Content: "c"} },
			check:  domain.IsValidation,
		},
		{
			name:   "content only script",
			author: alice,
			in:     func(uint) domain.SaveBlogInput { return domain.SaveBlogInput{Title: "t", Content: "<script>x</script>"} },
			check:  domain.IsValidation,
		},
		{
			name:   "unknown image",
			author: alice,
			in:     func(uint) domain.SaveBlogInput { return domain.SaveBlogInput{Title: "t", Content: "c", ImageIDs: []uint{99}} },
			check:  domain.IsValidation,
		},
		{
			name:   "someone else's image",
			author: alice,
			in:     func(uint) domain.SaveBlogInput { return domain.SaveBlogInput{Title: "t", Content: "c", ImageIDs: []uint{20}} },
			check:  domain.IsForbidden,
		},
		{
			name:   "edit someone else's blog",
			author: bob,
			in:     func(id uint) domain.SaveBlogInput { return domain.SaveBlogInput{ID: id, Title: "t", Content: "c"} },
			check:  domain.IsForbidden,
		},
		{
			name:   "edit missing blog",
			author: alice,
			in:     func(uint) domain.SaveBlogInput { return domain.SaveBlogInput{ID: 404, Title: "t", Content: "c"} },
			check:  domain.IsNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			existing, _ := svc.Save(context.Background(), alice, domain.SaveBlogInput{Title: "t", Content: "c"})

			_, err := svc.Save(context.Background(), tt.author, tt.in(existing.ID))
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestSave_AdminMayAttachAnyImage(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Save(context.Background(), admin, domain.SaveBlogInput{Title: "t", Content: "c", ImageIDs: []uint{10, 20}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, repo := newTestService()
	b, _ := svc.Save(context.Background(), alice, domain.SaveBlogInput{Title: "t", Content: "c"})

	if err := svc.UpdateStatus(context.Background(), b.ID, domain.StatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if repo.statusByID[b.ID] != domain.StatusApproved {
		t.Errorf("status = %v", repo.statusByID[b.ID])
	}
	for _, s := range []domain.Status{0, domain.StatusActive, 42} {
		if err := svc.UpdateStatus(context.Background(), b.ID, s); !domain.IsValidation(err) {
			t.Errorf("UpdateStatus(%v): expected validation error, got %v", s, err)
		}
	}
}

func TestListScopes(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	req := domain.PageRequest{Page: 1, PageSize: 5, Filter: map[string]string{"status": "1", "title__like": "koi"}}

	_, _ = svc.ListPublic(ctx, req)
	if repo.listReq.Filter["status"] != "2" || repo.listReq.Filter["title__like"] != "koi" {
		t.Errorf("public filter = %v", repo.listReq.Filter)
	}
	if req.Filter["status"] != "1" {
		t.Error("caller's filter map was mutated")
	}

	_, _ = svc.ListForUser(ctx, alice, req)
	if repo.listReq.Filter["user_id"] != "1" || repo.listReq.Filter["status"] != "1" {
		t.Errorf("user filter = %v", repo.listReq.Filter)
	}

	_, _ = svc.ListForAdmin(ctx, req)
	if _, ok := repo.listReq.Filter["user_id"]; ok {
		t.Errorf("admin filter = %v", repo.listReq.Filter)
	}
}
