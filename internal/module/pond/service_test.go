package pond

import (
	"context"
	"sort"
	"testing"

	"github.com/simp-lee/koiconsult/internal/domain"
)

type mockRepo struct {
	ponds  map[uint]*domain.Pond
	nextID uint
}

func newMockRepo() *mockRepo {
	return &mockRepo{ponds: make(map[uint]*domain.Pond), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, p *domain.Pond) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.ponds[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uint) (*domain.Pond, error) {
	p, ok := m.ponds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uint) ([]domain.Pond, error) {
	var out []domain.Pond
	for _, p := range m.ponds {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, p *domain.Pond) error {
	if _, ok := m.ponds[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.ponds[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.ponds[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.ponds, id)
	return nil
}

var (
	alice = domain.Principal{UserID: 1, UserName: "alice", Role: domain.RoleMember}
	bob   = domain.Principal{UserID: 2, UserName: "bob", Role: domain.RoleMember}
)

func TestPondService_Create(t *testing.T) {
	svc := NewPondService(newMockRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, domain.Pond{PondName: " <b>Garden</b> ", Quantity: 7, Description: `<p>ok</p><script>x</script>`})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.UserID != 1 || p.PondName != "Garden" || p.Description != "<p>ok</p>" {
		t.Errorf("pond = %+v", p)
	}

	if _, err := svc.Create(ctx, alice, domain.Pond{PondName: "garden"}); !domain.IsAlreadyExists(err) {
		t.Errorf("duplicate name: %v", err)
	}
	if _, err := svc.Create(ctx, bob, domain.Pond{PondName: "Garden"}); err != nil {
		t.Errorf("other member, same name: %v", err)
	}

	for _, in := range []domain.Pond{{PondName: "  "}, {PondName: "Deep", Quantity: -1}} {
		if _, err := svc.Create(ctx, alice, in); !domain.IsValidation(err) {
			t.Errorf("Create(%+v): expected validation error, got %v", in, err)
		}
	}
}

func TestPondService_Ownership(t *testing.T) {
	svc := NewPondService(newMockRepo())
	ctx := context.Background()
	p, _ := svc.Create(ctx, alice, domain.Pond{PondName: "Garden"})

	if _, err := svc.Get(ctx, bob, p.ID); !domain.IsNotFound(err) {
		t.Errorf("Get by another member: %v", err)
	}
	if _, err := svc.Update(ctx, bob, p.ID, domain.Pond{PondName: "Mine"}); !domain.IsNotFound(err) {
		t.Errorf("Update by another member: %v", err)
	}
	if err := svc.Delete(ctx, bob, p.ID); !domain.IsNotFound(err) {
		t.Errorf("Delete by another member: %v", err)
	}
	if ponds, _ := svc.List(ctx, bob); len(ponds) != 0 {
		t.Errorf("bob sees %d ponds", len(ponds))
	}
}

func TestPondService_Update(t *testing.T) {
	svc := NewPondService(newMockRepo())
	ctx := context.Background()
	garden, _ := svc.Create(ctx, alice, domain.Pond{PondName: "Garden"})
	_, _ = svc.Create(ctx, alice, domain.Pond{PondName: "Terrace"})

	got, err := svc.Update(ctx, alice, garden.ID, domain.Pond{PondName: "Garden", Quantity: 3})
	if err != nil || got.Quantity != 3 || got.UserID != 1 {
		t.Errorf("keeping own name: %+v, %v", got, err)
	}
	if _, err := svc.Update(ctx, alice, garden.ID, domain.Pond{PondName: "TERRACE"}); !domain.IsAlreadyExists(err) {
		t.Errorf("renaming onto a sibling: %v", err)
	}

	if err := svc.Delete(ctx, alice, garden.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, alice, garden.ID); !domain.IsNotFound(err) {
		t.Errorf("Get after delete: %v", err)
	}
}
