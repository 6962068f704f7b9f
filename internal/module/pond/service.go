package pond

import (
	"context"
	"fmt"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// pondService implements domain.PondService. Members only ever see their
// own ponds; another member's pond is reported as not found.
type pondService struct {
	repo domain.PondRepository
}

// NewPondService creates a new PondService.
func NewPondService(repo domain.PondRepository) domain.PondService {
	return &pondService{repo: repo}
}

func (s *pondService) Create(ctx context.Context, owner domain.Principal, in domain.Pond) (*domain.Pond, error) {
	p, err := clean(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, owner.UserID, 0, p.PondName); err != nil {
		return nil, err
	}
	p.UserID = owner.UserID
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, duplicateName(err, p.PondName)
	}
	return &p, nil
}

func (s *pondService) Get(ctx context.Context, owner domain.Principal, id uint) (*domain.Pond, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != owner.UserID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *pondService) List(ctx context.Context, owner domain.Principal) ([]domain.Pond, error) {
	return s.repo.ListByUser(ctx, owner.UserID)
}

func (s *pondService) Update(ctx context.Context, owner domain.Principal, id uint, in domain.Pond) (*domain.Pond, error) {
	existing, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	p, err := clean(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, owner.UserID, id, p.PondName); err != nil {
		return nil, err
	}
	p.BaseModel = existing.BaseModel
	p.UserID = owner.UserID
	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, duplicateName(err, p.PondName)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *pondService) Delete(ctx context.Context, owner domain.Principal, id uint) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// checkName rejects a name already used by another pond of the same user.
// Names compare case-insensitively; the unique index backs the exact match.
func (s *pondService) checkName(ctx context.Context, userID, selfID uint, name string) error {
	ponds, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range ponds {
		if p.ID != selfID && strings.EqualFold(p.PondName, name) {
			return nameTaken(name)
		}
	}
	return nil
}

func clean(in domain.Pond) (domain.Pond, error) {
	p := domain.Pond{
		PondName:    pkg.StripHTML(in.PondName),
		Quantity:    in.Quantity,
		Description: pkg.SanitizeHTML(in.Description),
		Image:       strings.TrimSpace(in.Image),
	}
	if p.PondName == "" {
		return p, domain.Validationf("Pond name is required")
	}
	if p.Quantity < 0 {
		return p, domain.Validationf("Quantity must not be negative")
	}
	return p, nil
}

func nameTaken(name string) error {
	return domain.NewAppError(domain.CodeAlreadyExists, fmt.Sprintf("You already have a pond named %q", name), nil)
}

func duplicateName(err error, name string) error {
	if domain.IsAlreadyExists(err) {
		return nameTaken(name)
	}
	return err
}
