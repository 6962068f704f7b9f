package userdetail

import (
	"context"
	"testing"
	"time"

	"github.com/simp-lee/koiconsult/internal/cache"
	"github.com/simp-lee/koiconsult/internal/domain"
)

type mockRepo struct {
	details    map[uint]*domain.UserDetail
	byNameHits int
	avatars    map[uint]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{details: make(map[uint]*domain.UserDetail), avatars: map[uint]string{10: "/uploads/a/me.png", 20: "/uploads/b/bob.png"}}
}

func (m *mockRepo) withAvatar(d domain.UserDetail) *domain.UserDetail {
	if d.AvatarImageID != nil {
		d.Avatar = &domain.Image{BaseModel: domain.BaseModel{ID: *d.AvatarImageID}, FilePath: m.avatars[*d.AvatarImageID]}
	}
	return &d
}

func (m *mockRepo) Upsert(_ context.Context, d *domain.UserDetail) error {
	cp := *d
	m.details[d.UserID] = &cp
	return nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID uint) (*domain.UserDetail, error) {
	d, ok := m.details[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.withAvatar(*d), nil
}

func (m *mockRepo) GetByUserName(_ context.Context, userName string) (*domain.UserDetail, error) {
	m.byNameHits++
	for _, d := range m.details {
		if d.UserName == userName {
			return m.withAvatar(*d), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepo) List(_ context.Context, req domain.PageRequest) (*domain.PageResult[domain.UserDetail], error) {
	return &domain.PageResult[domain.UserDetail]{PageIndex: req.Page, TotalPages: 1}, nil
}

type mockImages struct {
	domain.ImageRepository
	owners map[uint]uint
}

func (m *mockImages) GetByID(_ context.Context, id uint) (*domain.Image, error) {
	owner, ok := m.owners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Image{BaseModel: domain.BaseModel{ID: id}, UserID: owner}, nil
}

var (
	alice = domain.Principal{UserID: 1, UserName: "alice", Role: domain.RoleMember}
	admin = domain.Principal{UserID: 9, UserName: "root", Role: domain.RoleAdmin}
)

func newTestService(t *testing.T) (domain.UserDetailService, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	c := cache.NewMemoryCache(time.Minute, 50)
	t.Cleanup(func() { _ = c.Close() })
	images := &mockImages{owners: map[uint]uint{10: 1, 20: 2}}
	return NewUserDetailService(repo, images, c, time.Minute), repo
}

func TestUserDetailService_Save(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.Save(ctx, alice, domain.SaveUserDetailInput{
		FullName:    " Alice <b>A</b> ",
		DateOfBirth: "1990-04-02T00:00:00.000Z",
		Gender:      "Female",
		ImageID:     ptr(uint(10)),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if d.FullName != "Alice A" || d.DateOfBirth != "1990-04-02" || d.UserName != "alice" || d.AvatarURL() != "/uploads/a/me.png" {
		t.Errorf("saved %+v avatar %q", d, d.AvatarURL())
	}

	d, err = svc.Save(ctx, alice, domain.SaveUserDetailInput{FullName: "Alice A", Gender: "Female"})
	if err != nil {
		t.Fatalf("Save without image: %v", err)
	}
	if d.AvatarImageID == nil || *d.AvatarImageID != 10 {
		t.Errorf("avatar cleared by a save without imageId: %v", d.AvatarImageID)
	}

	d, _ = svc.Save(ctx, alice, domain.SaveUserDetailInput{FullName: "Alice A", ImageID: ptr(uint(0))})
	if d.AvatarImageID != nil {
		t.Errorf("imageId 0 should clear the avatar, got %v", *d.AvatarImageID)
	}
}

func TestUserDetailService_SaveErrors(t *testing.T) {
	tests := []struct {
		name  string
		who   domain.Principal
		in    domain.SaveUserDetailInput
		check func(error) bool
	}{
		{"missing name", alice, domain.SaveUserDetailInput{FullName: "  "}, domain.IsValidation},
		{"bad date", alice, domain.SaveUserDetailInput{FullName: "a", DateOfBirth: "02/04/1990"}, domain.IsValidation},
		{"future date", alice, domain.SaveUserDetailInput{FullName: "a", DateOfBirth: time.Now().AddDate(1, 0, 0).Format(dateLayout)}, domain.IsValidation},
		{"unknown avatar", alice, domain.SaveUserDetailInput{FullName: "a", ImageID: ptr(uint(99))}, domain.IsValidation},
		{"foreign avatar", alice, domain.SaveUserDetailInput{FullName: "a", ImageID: ptr(uint(20))}, domain.IsForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			if _, err := svc.Save(context.Background(), tt.who, tt.in); !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}

	svc, _ := newTestService(t)
	if _, err := svc.Save(context.Background(), admin, domain.SaveUserDetailInput{FullName: "Root", ImageID: ptr(uint(20))}); err != nil {
		t.Errorf("admin may use any image: %v", err)
	}
}

func TestUserDetailService_GetForUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetForUser(ctx, alice); !domain.IsValidation(err) {
		t.Errorf("missing profile: expected validation error, got %v", err)
	}
	_, _ = svc.Save(ctx, alice, domain.SaveUserDetailInput{FullName: "Alice"})
	d, err := svc.GetForUser(ctx, alice)
	if err != nil || d.FullName != "Alice" {
		t.Errorf("GetForUser = %+v, %v", d, err)
	}
}

func TestUserDetailService_AvatarByUserName(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	url, err := svc.AvatarByUserName(ctx, "alice")
	if err != nil || url != "" {
		t.Fatalf("no profile: %q, %v", url, err)
	}

	_, _ = svc.Save(ctx, alice, domain.SaveUserDetailInput{FullName: "Alice", ImageID: ptr(uint(10))})
	repo.byNameHits = 0
	for i := 0; i < 3; i++ {
		url, err = svc.AvatarByUserName(ctx, "alice")
		if err != nil || url != "/uploads/a/me.png" {
			t.Fatalf("AvatarByUserName = %q, %v", url, err)
		}
	}
	if repo.byNameHits != 1 {
		t.Errorf("repository hit %d times, want 1", repo.byNameHits)
	}

	if _, err := svc.AvatarByUserName(ctx, " "); !domain.IsValidation(err) {
		t.Errorf("blank name: %v", err)
	}
}
