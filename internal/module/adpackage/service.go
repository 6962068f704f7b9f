package adpackage

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/simp-lee/koiconsult/internal/cache"
	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// cachedPackage is the cache representation of a package. Images are kept
// beside the package because the model hides them from JSON.
type cachedPackage struct {
	Package domain.AdvertisementPackage `json:"package"`
	Images  []domain.Image              `json:"images"`
}

// packageService implements domain.PackageService.
type packageService struct {
	repo  domain.PackageRepository
	cache *cache.Typed[cachedPackage]
}

// NewPackageService creates a new PackageService. Package lookups are cached
// in c for ttl; c may be nil to disable caching.
func NewPackageService(repo domain.PackageRepository, c cache.Cache, ttl time.Duration) domain.PackageService {
	return &packageService{repo: repo, cache: cache.NewTyped[cachedPackage](c, ttl)}
}

func cacheKey(id uint) string {
	return "package:" + strconv.FormatUint(uint64(id), 10)
}

// Save creates the package when in.ID is 0 and updates it otherwise.
func (s *packageService) Save(ctx context.Context, admin domain.Principal, in domain.SavePackageInput) (*domain.AdvertisementPackage, error) {
	name := pkg.StripHTML(in.Name)
	if name == "" {
		return nil, domain.Validationf("Name is required")
	}
	if in.Price < 0 {
		return nil, domain.Validationf("Price must not be negative")
	}
	if in.LimitAd < 0 || in.LimitContent < 0 || in.LimitImage < 0 {
		return nil, domain.Validationf("Limits must not be negative")
	}
	if in.Status != 0 && !in.Status.Valid(domain.PackageStatuses) {
		return nil, domain.Validationf("Status must be Active or Inactive")
	}

	imageIDs := pkg.UniqueIDs(in.ImageIDs)
	if err := checkLimit(in.LimitImage, len(imageIDs)); err != nil {
		return nil, err
	}

	p := &domain.AdvertisementPackage{Status: domain.StatusActive, CreatedBy: admin.UserName}
	if in.ID != 0 {
		existing, err := s.repo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		p = existing
	}
	p.Name = name
	p.Price = in.Price
	p.Description = pkg.SanitizeHTML(in.Description)
	p.LimitAd = in.LimitAd
	p.LimitContent = in.LimitContent
	p.LimitImage = in.LimitImage
	if in.Status != 0 {
		p.Status = in.Status
	}

	var err error
	if in.ID == 0 {
		err = s.repo.Create(ctx, p, imageIDs)
	} else {
		err = s.repo.Update(ctx, p, imageIDs)
		s.invalidate(ctx, p.ID)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p.ID)
}

// Get returns the package with its images, from the cache when possible.
func (s *packageService) Get(ctx context.Context, id uint) (*domain.AdvertisementPackage, error) {
	cp, err := s.cache.GetOrSet(ctx, cacheKey(id), func() (cachedPackage, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return cachedPackage{}, err
		}
		return cachedPackage{Package: *p, Images: p.Images}, nil
	})
	if err != nil {
		return nil, err
	}
	p := cp.Package
	p.Images = cp.Images
	return &p, nil
}

func (s *packageService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.AdvertisementPackage], error) {
	return s.repo.List(ctx, req)
}

// AddImages attaches more images, refusing to go past the package's image
// limit.
func (s *packageService) AddImages(ctx context.Context, id uint, imageIDs []uint) error {
	imageIDs = pkg.UniqueIDs(imageIDs)
	if len(imageIDs) == 0 {
		return domain.Validationf("Please choose at least one image")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	merged := domain.ImageIDs(p.Images)
	for _, imageID := range imageIDs {
		if !slices.Contains(merged, imageID) {
			merged = append(merged, imageID)
		}
	}
	if err := checkLimit(p.LimitImage, len(merged)); err != nil {
		return err
	}

	defer s.invalidate(ctx, id)
	return s.repo.AddImages(ctx, id, imageIDs)
}

func (s *packageService) RemoveImages(ctx context.Context, id uint, imageIDs []uint) error {
	imageIDs = pkg.UniqueIDs(imageIDs)
	if len(imageIDs) == 0 {
		return domain.Validationf("Please choose at least one image")
	}
	defer s.invalidate(ctx, id)
	return s.repo.RemoveImages(ctx, id, imageIDs)
}

func (s *packageService) invalidate(ctx context.Context, id uint) {
	_ = s.cache.Delete(ctx, cacheKey(id))
}

// checkLimit enforces limitImage. A limit of 0 means unlimited.
func checkLimit(limit, n int) error {
	if limit > 0 && n > limit {
		return domain.Validationf(fmt.Sprintf("A package can have at most %d images", limit))
	}
	return nil
}
