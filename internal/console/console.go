// Package console composes the paging controllers, the attachment
// reconciler and the overlay registry into the screens of the koictl
// console. Each screen talks to the API through a narrow interface that
// *client.Client satisfies.
package console

import (
	"context"
	"io"

	"github.com/simp-lee/koiconsult/internal/attach"
	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/paging"
)

// BlogAPI is the blog surface of the API.
type BlogAPI interface {
	ListBlogs(ctx context.Context, scope client.BlogScope, q client.PageQuery) (client.Page[client.Blog], error)
	SaveBlog(ctx context.Context, req client.SaveBlog) (*client.Blog, error)
	UpdateBlogStatus(ctx context.Context, id uint, status domain.Status) error
}

// ImageAPI is the image library surface of the API.
type ImageAPI interface {
	UploadImage(ctx context.Context, filename string, r io.Reader) (*client.Image, error)
	ListImages(ctx context.Context, q client.PageQuery) (client.Page[client.Image], error)
	DeleteImage(ctx context.Context, id uint) error
}

// PackageAPI is the advertisement package surface of the API.
type PackageAPI interface {
	ListPackages(ctx context.Context, q client.PageQuery) (client.Page[client.Package], error)
	GetPackage(ctx context.Context, id uint) (*client.Package, error)
	SavePackage(ctx context.Context, req client.SavePackage) (*client.Package, error)
	AddPackageImages(ctx context.Context, packageID uint, imageIDs []uint) error
	RemovePackageImages(ctx context.Context, packageID uint, imageIDs []uint) error
}

// UserDetailAPI is the profile surface of the API.
type UserDetailAPI interface {
	MyUserDetail(ctx context.Context) (*client.UserDetail, error)
	SaveUserDetail(ctx context.Context, req client.SaveUserDetail) (*client.UserDetail, error)
	ListUserDetails(ctx context.Context, q client.PageQuery) (client.Page[client.UserDetail], error)
}

// PondAPI is the pond surface of the API.
type PondAPI interface {
	ListPonds(ctx context.Context) ([]client.Pond, error)
	AddPond(ctx context.Context, req client.SavePond) (*client.Pond, error)
	UpdatePond(ctx context.Context, id uint, req client.SavePond) (*client.Pond, error)
	DeletePond(ctx context.Context, id uint) error
}

// fail notifies err and returns it.
func fail(n notify.Notifier, err error) error {
	notify.Error(n, err)
	return err
}

// uploader adapts the image API to the reconciler's upload step.
func uploader(images ImageAPI) func(context.Context, attach.File) (attach.Attachment, error) {
	return func(ctx context.Context, f attach.File) (attach.Attachment, error) {
		if f.Open == nil {
			return attach.Attachment{}, client.Precondition("Please choose a file to upload")
		}
		rc, err := f.Open()
		if err != nil {
			return attach.Attachment{}, client.Precondition("Cannot read " + f.Name)
		}
		defer rc.Close()
		img, err := images.UploadImage(ctx, f.Name, rc)
		if err != nil {
			return attach.Attachment{}, err
		}
		return attach.Attachment{ID: img.ID, URL: img.FilePath}, nil
	}
}

// refresh reloads list after a successful save. Failures are already
// notified by the controller and do not fail the save.
func refresh[T any](ctx context.Context, list *paging.Controller[T]) {
	if list != nil {
		_ = list.Refetch(ctx)
	}
}

// upsert replaces the item matching id or prepends v.
func upsert[T any](items []T, v T, id func(T) uint) []T {
	for i := range items {
		if id(items[i]) == id(v) {
			items[i] = v
			return items
		}
	}
	return append([]T{v}, items...)
}
