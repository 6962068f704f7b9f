package console

import (
	"context"
	"strings"

	"github.com/simp-lee/koiconsult/internal/attach"
	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/paging"
)

func blogID(b client.Blog) uint { return b.ID }

func blogFetcher(api BlogAPI, scope client.BlogScope) paging.FetchFunc[client.Blog] {
	return func(ctx context.Context, q client.PageQuery) (client.Page[client.Blog], error) {
		return api.ListBlogs(ctx, scope, q)
	}
}

// BlogModeration is the admin queue of every blog.
type BlogModeration struct {
	*paging.Controller[client.Blog]
	api      BlogAPI
	notifier notify.Notifier
}

// NewBlogModeration returns the moderation screen, newest blogs first.
func NewBlogModeration(api BlogAPI, n notify.Notifier, pageSize int) *BlogModeration {
	return &BlogModeration{
		Controller: paging.New(blogFetcher(api, client.BlogsAdmin),
			paging.WithPageSize(pageSize),
			paging.WithNotifier(n),
			paging.WithFilters(map[string]any{"blogStatus": nil, "orderBlog": 1}),
		),
		api:      api,
		notifier: n,
	}
}

// FilterStatus shows blogs in status only; nil shows all.
func (m *BlogModeration) FilterStatus(ctx context.Context, status *domain.Status) error {
	var v any
	if status != nil {
		v = int(*status)
	}
	return m.SetFilter(ctx, map[string]any{"blogStatus": v})
}

// Approve publishes a pending blog.
func (m *BlogModeration) Approve(ctx context.Context, id uint) error {
	return m.transition(ctx, id, domain.StatusApproved, "Blog approved")
}

// Reject turns down a pending blog.
func (m *BlogModeration) Reject(ctx context.Context, id uint) error {
	return m.transition(ctx, id, domain.StatusRejected, "Blog rejected")
}

// transition only moves blogs shown as pending on the current page. The
// list is refetched afterwards, never patched.
func (m *BlogModeration) transition(ctx context.Context, id uint, to domain.Status, done string) error {
	var found *client.Blog
	for _, b := range m.Items() {
		if b.ID == id {
			found = &b
			break
		}
	}
	if found == nil {
		return fail(m.notifier, client.Precondition("Blog is not on this page"))
	}
	if found.Status != domain.StatusPending {
		return fail(m.notifier, client.Precondition("Only pending blogs can be moderated"))
	}
	if err := m.api.UpdateBlogStatus(ctx, id, to); err != nil {
		return fail(m.notifier, err)
	}
	notify.Success(m.notifier, done)
	return m.Refetch(ctx)
}

// PublicBlogs is the approved feed, or the caller's own blogs.
type PublicBlogs struct {
	*paging.Controller[client.Blog]
}

// NewPublicBlogs returns a feed over scope, which must be BlogsPublic or
// BlogsMine.
func NewPublicBlogs(api BlogAPI, scope client.BlogScope, n notify.Notifier, pageSize int) *PublicBlogs {
	return &PublicBlogs{Controller: paging.New(blogFetcher(api, scope),
		paging.WithPageSize(pageSize),
		paging.WithNotifier(n),
	)}
}

// Search filters by title; an empty title clears the filter.
func (p *PublicBlogs) Search(ctx context.Context, title string) error {
	var v any
	if t := strings.TrimSpace(title); t != "" {
		v = t
	}
	return p.SetFilter(ctx, map[string]any{"title": v})
}

// BlogForm is what the member types into the blog editor.
type BlogForm struct {
	Title   string
	Content string
}

// BlogEditor creates a blog or edits one the member owns. The blog's image
// list is replaced by the save, so no separate attach or detach calls are
// made.
type BlogEditor struct {
	blogs    BlogAPI
	images   ImageAPI
	notifier notify.Notifier
	list     *paging.Controller[client.Blog]

	id  uint
	rec *attach.Reconciler
}

// NewBlogEditor returns an editor in the create flow. list, if non-nil, is
// patched and refetched after a save.
func NewBlogEditor(blogs BlogAPI, images ImageAPI, n notify.Notifier, list *paging.Controller[client.Blog]) *BlogEditor {
	return &BlogEditor{blogs: blogs, images: images, notifier: n, list: list, rec: attach.New(attach.Create, nil)}
}

// Edit switches the editor to b.
func (e *BlogEditor) Edit(b client.Blog) {
	e.id = b.ID
	e.rec = attach.New(attach.Edit, b.ImageIDs)
}

// Attachments returns the staged image changes.
func (e *BlogEditor) Attachments() *attach.Reconciler {
	return e.rec
}

// Submit uploads staged files and saves the blog with the merged image
// list.
func (e *BlogEditor) Submit(ctx context.Context, form BlogForm) (*client.Blog, error) {
	if strings.TrimSpace(form.Title) == "" {
		return nil, fail(e.notifier, client.Precondition("Please enter a title"))
	}
	if strings.TrimSpace(form.Content) == "" {
		return nil, fail(e.notifier, client.Precondition("Please enter some content"))
	}

	var saved *client.Blog
	_, err := e.rec.Submit(ctx, attach.Pipeline{
		Upload: uploader(e.images),
		Save: func(ctx context.Context, ids []uint) error {
			b, err := e.blogs.SaveBlog(ctx, client.SaveBlog{ID: e.id, Title: form.Title, Content: form.Content, ImageIDs: ids})
			if err != nil {
				return err
			}
			saved = b
			return nil
		},
	})
	if err != nil {
		return nil, fail(e.notifier, err)
	}

	if e.list != nil {
		e.list.Patch(func(items []client.Blog) []client.Blog { return upsert(items, *saved, blogID) })
	}
	notify.Success(e.notifier, "Blog saved and waiting for approval")
	refresh(ctx, e.list)
	return saved, nil
}
