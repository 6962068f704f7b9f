package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/storage"
)

const sweepBatchSize = 100

// FileStore persists image bytes and removes them again.
type FileStore interface {
	Save(r io.Reader, filename string) (*storage.Stored, error)
	Remove(publicFilePath string) error
}

// imageService implements domain.ImageService.
type imageService struct {
	repo  domain.ImageRepository
	files FileStore
	maxMB int
	now   func() time.Time
}

// NewImageService creates a new ImageService. maxMB is only used in the
// message returned for oversized uploads.
func NewImageService(repo domain.ImageRepository, files FileStore, maxMB int) domain.ImageService {
	return &imageService{repo: repo, files: files, maxMB: maxMB, now: time.Now}
}

// Upload stores the file and records it in the owner's library. The stored
// files are removed again if the record cannot be written.
func (s *imageService) Upload(ctx context.Context, owner domain.Principal, file domain.UploadFile) (*domain.Image, error) {
	if file.Reader == nil || file.Size == 0 {
		return nil, domain.Validationf("Please choose a file to upload")
	}

	stored, err := s.files.Save(file.Reader, file.Name)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, domain.Validationf("Only JPEG, PNG, GIF and WebP images are supported")
	case errors.Is(err, storage.ErrTooLarge):
		return nil, domain.Validationf(fmt.Sprintf("Image must be at most %d MB", s.maxMB))
	case err != nil:
		return nil, domain.NewAppError(domain.CodeInternal, "failed to store image", err)
	}

	image := &domain.Image{
		FilePath:      stored.FilePath,
		ThumbnailPath: stored.ThumbnailPath,
		FileName:      stored.FileName,
		MimeType:      stored.MimeType,
		Size:          stored.Size,
		Width:         stored.Width,
		Height:        stored.Height,
		UserID:        owner.UserID,
		UserName:      owner.UserName,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		_ = s.files.Remove(stored.FilePath)
		return nil, err
	}
	return image, nil
}

func (s *imageService) ListForMember(ctx context.Context, owner domain.Principal, req domain.PageRequest) (*domain.PageResult[domain.Image], error) {
	return s.repo.ListByUser(ctx, owner.UserID, req)
}

// Delete removes one of the owner's images. Admins may delete any image.
// Images still attached to a blog, package or profile are kept.
func (s *imageService) Delete(ctx context.Context, owner domain.Principal, id uint) error {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if image.UserID != owner.UserID && !owner.IsAdmin() {
		return domain.NewAppError(domain.CodeForbidden, "You can only delete your own images", nil)
	}
	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.Validationf("Image is still in use")
	}
	return s.remove(ctx, image)
}

// SweepOrphans deletes unreferenced images older than maxAge in batches and
// returns how many were removed. It keeps going past individual failures and
// reports them joined.
func (s *imageService) SweepOrphans(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	removed := 0
	var errs []error
	skipped := make(map[uint]bool)

	for {
		limit := sweepBatchSize + len(skipped)
		batch, err := s.repo.ListOrphans(ctx, cutoff, limit)
		if err != nil {
			return removed, errors.Join(append(errs, err)...)
		}
		progressed := false
		for i := range batch {
			if skipped[batch[i].ID] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return removed, errors.Join(append(errs, err)...)
			}
			if err := s.remove(ctx, &batch[i]); err != nil {
				skipped[batch[i].ID] = true
				errs = append(errs, fmt.Errorf("image %d: %w", batch[i].ID, err))
				continue
			}
			removed++
			progressed = true
		}
		if !progressed || len(batch) < limit {
			return removed, errors.Join(errs...)
		}
	}
}

// remove deletes the record first so a failed file removal leaves only an
// unreachable file behind, never a record pointing at nothing.
func (s *imageService) remove(ctx context.Context, image *domain.Image) error {
	if err := s.repo.Delete(ctx, image.ID); err != nil {
		return err
	}
	if err := s.files.Remove(image.FilePath); err != nil && !errors.Is(err, storage.ErrOutsideRoot) {
		return domain.NewAppError(domain.CodeInternal, "failed to remove image files", err)
	}
	return nil
}
