package pond

import (
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// SavePondRequest is the body of add and update.
type SavePondRequest struct {
	PondName    string `json:"pondName" binding:"required,max=255"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
	Image       string `json:"image" binding:"max=512"`
	Description string `json:"description"`
}

func (r SavePondRequest) pond() domain.Pond {
	return domain.Pond{
		PondName:    r.PondName,
		Quantity:    r.Quantity,
		Image:       r.Image,
		Description: r.Description,
	}
}

// PondResponse is the wire form of a pond.
type PondResponse struct {
	ID          uint      `json:"id"`
	PondName    string    `json:"pondName"`
	Quantity    int       `json:"quantity"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	CreatedDate time.Time `json:"createdDate"`
}

func newPondResponse(p domain.Pond) PondResponse {
	return PondResponse{
		ID:          p.ID,
		PondName:    p.PondName,
		Quantity:    p.Quantity,
		Image:       p.Image,
		Description: p.Description,
		CreatedDate: p.CreatedAt,
	}
}
