package image

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// uploadFields are the multipart field names accepted for the file.
var uploadFields = []string{"file", "File"}

// ImageHandler handles REST API requests for the member image library.
type ImageHandler struct {
	svc domain.ImageService
}

// NewImageHandler creates a new ImageHandler with the given service.
func NewImageHandler(svc domain.ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Upload handles POST /api/Images/upload-image.
func (h *ImageHandler) Upload(c *gin.Context) {
	owner, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	var (
		upload domain.UploadFile
		found  bool
	)
	for _, field := range uploadFields {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeInternal, "failed to read upload", err))
			return
		}
		defer f.Close()
		upload = domain.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		}
		found = true
		break
	}
	if !found {
		pkg.Error(c, domain.Validationf("Please choose a file to upload"))
		return
	}

	image, err := h.svc.Upload(c.Request.Context(), owner, upload)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, image)
}

// ListForMember handles POST /api/Images/get-images-for-member.
func (h *ImageHandler) ListForMember(c *gin.Context) {
	owner, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	var req ListImagesRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	page, err := h.svc.ListForMember(c.Request.Context(), owner, req.PageRequest())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, page)
}

// Delete handles DELETE /api/Images/delete-image/:id.
func (h *ImageHandler) Delete(c *gin.Context) {
	owner, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), owner, id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, "Image deleted")
}
