package userdetail

import (
	"context"
	"strings"
	"time"

	"github.com/simp-lee/koiconsult/internal/cache"
	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

const dateLayout = "2006-01-02"

// userDetailService implements domain.UserDetailService.
type userDetailService struct {
	repo    domain.UserDetailRepository
	images  domain.ImageRepository
	avatars *cache.Typed[string]
}

// NewUserDetailService creates a new UserDetailService. Avatar lookups by
// user name are cached in c for ttl; c may be nil.
func NewUserDetailService(repo domain.UserDetailRepository, images domain.ImageRepository, c cache.Cache, ttl time.Duration) domain.UserDetailService {
	return &userDetailService{repo: repo, images: images, avatars: cache.NewTyped[string](c, ttl)}
}

func avatarKey(userName string) string {
	return "avatar:" + strings.ToLower(userName)
}

// Save creates or updates the owner's profile. A nil ImageID keeps the
// current avatar.
func (s *userDetailService) Save(ctx context.Context, owner domain.Principal, in domain.SaveUserDetailInput) (*domain.UserDetail, error) {
	fullName := pkg.StripHTML(in.FullName)
	if fullName == "" {
		return nil, domain.Validationf("Full name is required")
	}
	dob, err := normalizeDate(in.DateOfBirth)
	if err != nil {
		return nil, err
	}

	detail := &domain.UserDetail{
		UserID:       owner.UserID,
		UserName:     owner.UserName,
		FullName:     fullName,
		IdentityCard: strings.TrimSpace(in.IdentityCard),
		DateOfBirth:  dob,
		Gender:       strings.TrimSpace(in.Gender),
	}

	current, err := s.repo.GetByUserID(ctx, owner.UserID)
	switch {
	case err == nil:
		detail.AvatarImageID = current.AvatarImageID
	case !domain.IsNotFound(err):
		return nil, err
	}

	if in.ImageID != nil {
		if *in.ImageID == 0 {
			detail.AvatarImageID = nil
		} else {
			if err := s.checkAvatar(ctx, owner, *in.ImageID); err != nil {
				return nil, err
			}
			id := *in.ImageID
			detail.AvatarImageID = &id
		}
	}

	if err := s.repo.Upsert(ctx, detail); err != nil {
		return nil, err
	}
	_ = s.avatars.Delete(ctx, avatarKey(owner.UserName))
	return s.repo.GetByUserID(ctx, owner.UserID)
}

func (s *userDetailService) checkAvatar(ctx context.Context, owner domain.Principal, imageID uint) error {
	img, err := s.images.GetByID(ctx, imageID)
	if domain.IsNotFound(err) {
		return domain.Validationf("Avatar image does not exist")
	}
	if err != nil {
		return err
	}
	if img.UserID != owner.UserID && !owner.IsAdmin() {
		return domain.NewAppError(domain.CodeForbidden, "You can only use images from your own library", nil)
	}
	return nil
}

// GetForUser returns the owner's profile. A member who never saved one gets
// a validation error asking them to fill it in.
func (s *userDetailService) GetForUser(ctx context.Context, owner domain.Principal) (*domain.UserDetail, error) {
	d, err := s.repo.GetByUserID(ctx, owner.UserID)
	if domain.IsNotFound(err) {
		return nil, domain.Validationf("Please update your profile")
	}
	return d, err
}

func (s *userDetailService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.UserDetail], error) {
	return s.repo.List(ctx, req)
}

// AvatarByUserName returns the avatar path of userName, or "" when the user
// has no profile or no avatar.
func (s *userDetailService) AvatarByUserName(ctx context.Context, userName string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", domain.Validationf("User name is required")
	}
	return s.avatars.GetOrSet(ctx, avatarKey(userName), func() (string, error) {
		d, err := s.repo.GetByUserName(ctx, userName)
		if domain.IsNotFound(err) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return d.AvatarURL(), nil
	})
}

// normalizeDate accepts "" or a date optionally followed by a time part
// ("2000-05-01T00:00:00Z") and returns the bare date.
func normalizeDate(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if len(v) > len(dateLayout) {
		v = v[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return "", domain.Validationf("Date of birth must be a date like 2000-01-31")
	}
	if t.After(time.Now()) {
		return "", domain.Validationf("Date of birth must be in the past")
	}
	return v, nil
}
