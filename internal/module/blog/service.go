package blog

import (
	"context"
	"strconv"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// blogService implements domain.BlogService.
type blogService struct {
	repo   domain.BlogRepository
	images domain.ImageRepository
}

// NewBlogService creates a new BlogService. images is used to check that
// attached images belong to the author.
func NewBlogService(repo domain.BlogRepository, images domain.ImageRepository) domain.BlogService {
	return &blogService{repo: repo, images: images}
}

// Save creates the blog when in.ID is 0 and updates it otherwise. Either way
// the blog goes back to Pending and waits for moderation.
func (s *blogService) Save(ctx context.Context, author domain.Principal, in domain.SaveBlogInput) (*domain.Blog, error) {
	title := pkg.StripHTML(in.Title)
	content := pkg.SanitizeHTML(in.Content)
	if title == "" {
		return nil, domain.Validationf("Title is required")
	}
	if content == "" {
		return nil, domain.Validationf("Content is required")
	}

	imageIDs := pkg.UniqueIDs(in.ImageIDs)
	if err := s.checkImages(ctx, author, imageIDs); err != nil {
		return nil, err
	}

	if in.ID == 0 {
		blog := &domain.Blog{
			Title:    title,
			Content:  content,
			UserID:   author.UserID,
			UserName: author.UserName,
			Status:   domain.StatusPending,
		}
		if err := s.repo.Create(ctx, blog, imageIDs); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, blog.ID)
	}

	blog, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if blog.UserID != author.UserID {
		return nil, domain.NewAppError(domain.CodeForbidden, "You can only edit your own blogs", nil)
	}
	blog.Title = title
	blog.Content = content
	blog.Status = domain.StatusPending
	if err := s.repo.Update(ctx, blog, imageIDs); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, blog.ID)
}

func (s *blogService) checkImages(ctx context.Context, author domain.Principal, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	images, err := s.images.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(images) != len(ids) {
		return domain.Validationf("One or more images do not exist")
	}
	if author.IsAdmin() {
		return nil
	}
	for _, img := range images {
		if img.UserID != author.UserID {
			return domain.NewAppError(domain.CodeForbidden, "You can only attach images from your own library", nil)
		}
	}
	return nil
}

// UpdateStatus records a moderation decision. Any blog status is accepted;
// which transitions to offer is up to the client.
func (s *blogService) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	if !status.Valid(domain.BlogStatuses) {
		return domain.Validationf("Status must be Pending, Approved or Rejected")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// ListPublic lists approved blogs only, whatever status the caller asked for.
func (s *blogService) ListPublic(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Blog], error) {
	req.Filter = withFilter(req.Filter, "status", strconv.Itoa(int(domain.StatusApproved)))
	return s.repo.List(ctx, req)
}

// ListForUser lists the author's own blogs in every status.
func (s *blogService) ListForUser(ctx context.Context, author domain.Principal, req domain.PageRequest) (*domain.PageResult[domain.Blog], error) {
	req.Filter = withFilter(req.Filter, "user_id", strconv.FormatUint(uint64(author.UserID), 10))
	return s.repo.List(ctx, req)
}

func (s *blogService) ListForAdmin(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Blog], error) {
	return s.repo.List(ctx, req)
}

// withFilter returns a copy of filter with key set, so the caller's map is
// never mutated.
func withFilter(filter map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(filter)+1)
	for k, v := range filter {
		if !strings.HasPrefix(k, key) {
			out[k] = v
		}
	}
	out[key] = value
	return out
}
