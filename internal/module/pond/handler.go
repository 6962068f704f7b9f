package pond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// PondHandler handles REST API requests for a member's ponds.
type PondHandler struct {
	svc domain.PondService
}

// NewPondHandler creates a new PondHandler with the given service.
func NewPondHandler(svc domain.PondService) *PondHandler {
	return &PondHandler{svc: svc}
}

func owner(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
	}
	return p, ok
}

// List handles GET /api/UserPond/getall.
func (h *PondHandler) List(c *gin.Context) {
	p, ok := owner(c)
	if !ok {
		return
	}
	ponds, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	out := make([]PondResponse, 0, len(ponds))
	for _, pond := range ponds {
		out = append(out, newPondResponse(pond))
	}
	pkg.Success(c, out)
}

// Add handles POST /api/UserPond/add.
func (h *PondHandler) Add(c *gin.Context) {
	p, ok := owner(c)
	if !ok {
		return
	}
	var req SavePondRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pond, err := h.svc.Create(c.Request.Context(), p, req.pond())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg.Response{
		StatusCode: http.StatusCreated,
		IsSuccess:  true,
		Message:    "Pond added",
		Result:     newPondResponse(*pond),
	})
}

// Update handles PUT /api/UserPond/update/:id.
func (h *PondHandler) Update(c *gin.Context) {
	p, ok := owner(c)
	if !ok {
		return
	}
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req SavePondRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pond, err := h.svc.Update(c.Request.Context(), p, id, req.pond())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newPondResponse(*pond))
}

// Delete handles DELETE /api/UserPond/delete/:id.
func (h *PondHandler) Delete(c *gin.Context) {
	p, ok := owner(c)
	if !ok {
		return
	}
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, "Pond deleted")
}

// Get handles GET /api/UserPond/viewdetails/:id.
func (h *PondHandler) Get(c *gin.Context) {
	p, ok := owner(c)
	if !ok {
		return
	}
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pond, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newPondResponse(*pond))
}
