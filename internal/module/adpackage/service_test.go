package adpackage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/simp-lee/koiconsult/internal/cache"
	"github.com/simp-lee/koiconsult/internal/domain"
)

type mockRepo struct {
	packages map[uint]*domain.AdvertisementPackage
	nextID   uint
	gets     int
	added    []uint
	removed  []uint
}

func newMockRepo() *mockRepo {
	return &mockRepo{packages: make(map[uint]*domain.AdvertisementPackage), nextID: 1}
}

func images(ids []uint) []domain.Image {
	out := make([]domain.Image, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Image{BaseModel: domain.BaseModel{ID: id}, FilePath: "/uploads/x.png"})
	}
	return out
}

func (m *mockRepo) Create(_ context.Context, p *domain.AdvertisementPackage, ids []uint) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	cp.Images = images(ids)
	m.packages[p.ID] = &cp
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *domain.AdvertisementPackage, ids []uint) error {
	cp := *p
	cp.Images = images(ids)
	m.packages[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uint) (*domain.AdvertisementPackage, error) {
	m.gets++
	p, ok := m.packages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, req domain.PageRequest) (*domain.PageResult[domain.AdvertisementPackage], error) {
	return &domain.PageResult[domain.AdvertisementPackage]{PageIndex: req.Page, TotalPages: 1}, nil
}

func (m *mockRepo) AddImages(_ context.Context, id uint, ids []uint) error {
	m.added = ids
	p := m.packages[id]
	p.Images = append(p.Images, images(ids)...)
	return nil
}

func (m *mockRepo) RemoveImages(_ context.Context, _ uint, ids []uint) error {
	m.removed = ids
	return nil
}

var admin = domain.Principal{UserID: 9, UserName: "root", Role: domain.RoleAdmin}

func newCachedService(t *testing.T) (domain.PackageService, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	c := cache.NewMemoryCache(time.Minute, 100)
	t.Cleanup(func() { _ = c.Close() })
	return NewPackageService(repo, c, time.Minute), repo
}

func TestPackageService_SaveCreate(t *testing.T) {
	svc, _ := newCachedService(t)

	p, err := svc.Save(context.Background(), admin, domain.SavePackageInput{
		Name:        " <b>Gold</b> ",
		Price:       500,
		Description: `<p>Best</p><img src=x onerror="alert(1)">`,
		LimitImage:  2,
		ImageIDs:    []uint{4, 4, 5},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.Name != "Gold" || p.Status != domain.StatusActive || p.CreatedBy != "root" {
		t.Errorf("package = %+v", p)
	}
	if strings.Contains(p.Description, "onerror") {
		t.Errorf("description not sanitized: %q", p.Description)
	}
	if len(p.Images) != 2 {
		t.Errorf("images = %v", domain.ImageIDs(p.Images))
	}
}

func TestPackageService_SaveValidation(t *testing.T) {
	tests := []struct {
		name string
		in   domain.SavePackageInput
	}{
		{"empty name", domain.SavePackageInput{Name: "<i></i>"}},
		{"negative price", domain.SavePackageInput{Name: "a", Price: -1}},
		{"negative limit", domain.SavePackageInput{Name: "a", LimitAd: -1}},
		{"blog status", domain.SavePackageInput{Name: "a", Status: domain.StatusApproved}},
		{"over image limit", domain.SavePackageInput{Name: "a", LimitImage: 1, ImageIDs: []uint{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newCachedService(t)
			if _, err := svc.Save(context.Background(), admin, tt.in); !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPackageService_GetIsCachedAndInvalidated(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	p, _ := svc.Save(ctx, admin, domain.SavePackageInput{Name: "Gold", Price: 500, ImageIDs: []uint{1}})

	repo.gets = 0
	for i := 0; i < 3; i++ {
		got, err := svc.Get(ctx, p.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Gold" || len(got.Images) != 1 {
			t.Errorf("cached package = %+v", got)
		}
	}
	if repo.gets != 0 {
		t.Errorf("repository hit %d times, want 0 (Save warmed the cache)", repo.gets)
	}

	if _, err := svc.Save(ctx, admin, domain.SavePackageInput{ID: p.ID, Name: "Platinum", Price: 900}); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	got, _ := svc.Get(ctx, p.ID)
	if got.Name != "Platinum" || len(got.Images) != 0 {
		t.Errorf("stale package after update: %+v", got)
	}

	if err := svc.AddImages(ctx, p.ID, []uint{7}); err != nil {
		t.Fatalf("AddImages: %v", err)
	}
	got, _ = svc.Get(ctx, p.ID)
	if len(got.Images) != 1 || got.Images[0].ID != 7 {
		t.Errorf("stale images after add: %v", domain.ImageIDs(got.Images))
	}
}

func TestPackageService_UpdateKeepsStatusUnlessGiven(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	p, _ := svc.Save(ctx, admin, domain.SavePackageInput{Name: "Gold", Status: domain.StatusInactive})
	if p.Status != domain.StatusInactive {
		t.Fatalf("status = %v", p.Status)
	}
	p, _ = svc.Save(ctx, admin, domain.SavePackageInput{ID: p.ID, Name: "Gold 2"})
	if p.Status != domain.StatusInactive {
		t.Errorf("status changed to %v", p.Status)
	}
}

func TestPackageService_AddImagesLimit(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	p, _ := svc.Save(ctx, admin, domain.SavePackageInput{Name: "Gold", LimitImage: 3, ImageIDs: []uint{1, 2}})

	if err := svc.AddImages(ctx, p.ID, []uint{2, 3}); err != nil {
		t.Fatalf("AddImages within limit: %v", err)
	}
	if err := svc.AddImages(ctx, p.ID, []uint{4}); !domain.IsValidation(err) {
		t.Errorf("expected limit error, got %v", err)
	}
	if err := svc.AddImages(ctx, p.ID, nil); !domain.IsValidation(err) {
		t.Errorf("expected empty selection error, got %v", err)
	}
	if err := svc.AddImages(ctx, 404, []uint{1}); !domain.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(repo.added) != 2 {
		t.Errorf("added = %v", repo.added)
	}
}

func TestPackageService_RemoveImages(t *testing.T) {
	svc, repo := newCachedService(t)
	if err := svc.RemoveImages(context.Background(), 1, []uint{3, 0, 3}); err != nil {
		t.Fatalf("RemoveImages: %v", err)
	}
	if len(repo.removed) != 1 || repo.removed[0] != 3 {
		t.Errorf("removed = %v", repo.removed)
	}
}

func TestPackageService_WithoutCache(t *testing.T) {
	repo := newMockRepo()
	svc := NewPackageService(repo, nil, time.Minute)
	p, err := svc.Save(context.Background(), admin, domain.SavePackageInput{Name: "Gold"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	repo.gets = 0
	_, _ = svc.Get(context.Background(), p.ID)
	_, _ = svc.Get(context.Background(), p.ID)
	if repo.gets != 2 {
		t.Errorf("repository hit %d times, want 2", repo.gets)
	}
}
