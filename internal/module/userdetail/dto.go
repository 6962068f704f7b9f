package userdetail

import (
	"strconv"
	"strings"
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// SaveUserDetailRequest is the body of create-update-user-detail.
type SaveUserDetailRequest struct {
	FullName     string  `json:"fullName" binding:"required,max=255"`
	IdentityCard string  `json:"identityCard" binding:"max=32"`
	DateOfBirth  *string `json:"dateOfBirth"`
	Gender       string  `json:"gender" binding:"max=16"`
	ImageID      *uint   `json:"imageId"`
}

func (r SaveUserDetailRequest) input() domain.SaveUserDetailInput {
	in := domain.SaveUserDetailInput{
		FullName:     r.FullName,
		IdentityCard: r.IdentityCard,
		Gender:       r.Gender,
		ImageID:      r.ImageID,
	}
	if r.DateOfBirth != nil {
		in.DateOfBirth = *r.DateOfBirth
	}
	return in
}

// ListUserDetailsRequest is the body of get-all-details. Empty strings mean
// no filter.
type ListUserDetailsRequest struct {
	pkg.PageBody
	FullName *string `json:"fullName"`
	UserName *string `json:"userName"`
	UserID   *string `json:"userId"`
}

func (r ListUserDetailsRequest) PageRequest() domain.PageRequest {
	filter := map[string]string{}
	if r.FullName != nil && strings.TrimSpace(*r.FullName) != "" {
		filter["full_name__like"] = strings.TrimSpace(*r.FullName)
	}
	if r.UserName != nil && strings.TrimSpace(*r.UserName) != "" {
		filter["user_name__like"] = strings.TrimSpace(*r.UserName)
	}
	if r.UserID != nil {
		if id, err := strconv.ParseUint(strings.TrimSpace(*r.UserID), 10, 64); err == nil {
			filter["user_id"] = strconv.FormatUint(id, 10)
		}
	}
	return pkg.NewPageRequest(r.PageBody, "created_at:desc", filter)
}

// UserDetailResponse is the wire form of a profile.
type UserDetailResponse struct {
	UserID       uint      `json:"userId"`
	UserName     string    `json:"userName"`
	FullName     string    `json:"fullName"`
	IdentityCard string    `json:"identityCard"`
	DateOfBirth  *string   `json:"dateOfBirth"`
	Gender       string    `json:"gender"`
	Avatar       string    `json:"avatar"`
	ImageID      *uint     `json:"imageId"`
	CreatedDate  time.Time `json:"createdDate"`
}

func newUserDetailResponse(d domain.UserDetail) UserDetailResponse {
	resp := UserDetailResponse{
		UserID:       d.UserID,
		UserName:     d.UserName,
		FullName:     d.FullName,
		IdentityCard: d.IdentityCard,
		Gender:       d.Gender,
		Avatar:       d.AvatarURL(),
		ImageID:      d.AvatarImageID,
		CreatedDate:  d.CreatedAt,
	}
	if d.DateOfBirth != "" {
		dob := d.DateOfBirth
		resp.DateOfBirth = &dob
	}
	return resp
}
