package image

import (
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// ListImagesRequest is the body of get-images-for-member.
type ListImagesRequest struct {
	pkg.PageBody
	Name      *string `json:"name"`
	OrderDate *string `json:"orderDate" binding:"omitempty,oneof=asc desc"`
}

// PageRequest converts the body into repository paging parameters. Images
// are newest first unless orderDate asks otherwise.
func (r ListImagesRequest) PageRequest() domain.PageRequest {
	filter := map[string]string{}
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		filter["file_name__like"] = strings.TrimSpace(*r.Name)
	}
	sort := "created_at:desc"
	if r.OrderDate != nil && *r.OrderDate != "" {
		sort = "created_at:" + *r.OrderDate
	}
	return pkg.NewPageRequest(r.PageBody, sort, filter)
}
