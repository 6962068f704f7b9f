package console

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/simp-lee/koiconsult/internal/attach"
	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/paging"
)

// UserList pages over member profiles. Admin only.
type UserList struct {
	*paging.Controller[client.UserDetail]
}

func NewUserList(api UserDetailAPI, n notify.Notifier, pageSize int) *UserList {
	return &UserList{Controller: paging.New(api.ListUserDetails,
		paging.WithPageSize(pageSize),
		paging.WithNotifier(n),
	)}
}

// Search filters by full name and user name. Empty values clear a filter.
func (l *UserList) Search(ctx context.Context, fullName, userName string) error {
	patch := map[string]any{"fullName": nil, "userName": nil}
	if v := strings.TrimSpace(fullName); v != "" {
		patch["fullName"] = v
	}
	if v := strings.TrimSpace(userName); v != "" {
		patch["userName"] = v
	}
	return l.SetFilter(ctx, patch)
}

// Steps of a profile save.
const (
	StepProfile attach.Step = "profile"
	StepAvatar  attach.Step = "avatar"
)

// ErrNoProfile reports that the member has not saved a profile yet.
var ErrNoProfile = errors.New("console: no profile saved yet")

// Profile notifications.
const (
	MessageSessionExpired = "Your session has expired, please log in again"
	MessageUpdateProfile  = "Please update your profile"
)

// ProfileEditor shows and saves the caller's profile.
type ProfileEditor struct {
	api      UserDetailAPI
	images   ImageAPI
	session  *client.Session
	notifier notify.Notifier

	current *client.UserDetail
}

func NewProfileEditor(api UserDetailAPI, images ImageAPI, session *client.Session, n notify.Notifier) *ProfileEditor {
	return &ProfileEditor{api: api, images: images, session: session, notifier: n}
}

// Load fetches the profile. A rejected session is cleared; a missing
// profile yields ErrNoProfile after a warning.
func (e *ProfileEditor) Load(ctx context.Context) (*client.UserDetail, error) {
	d, err := e.api.MyUserDetail(ctx)
	switch {
	case err == nil:
		e.current = d
		return d, nil
	case client.IsUnauthorized(err):
		if e.session != nil {
			e.session.Clear()
		}
		notify.Warn(e.notifier, MessageSessionExpired)
		return nil, err
	case client.IsBusiness(err) && client.StatusCode(err) == http.StatusBadRequest:
		e.current = nil
		notify.Warn(e.notifier, MessageUpdateProfile)
		return nil, ErrNoProfile
	default:
		return nil, fail(e.notifier, err)
	}
}

// Current returns the last loaded or saved profile.
func (e *ProfileEditor) Current() *client.UserDetail {
	return e.current
}

// Save updates the profile, then uploads avatar when given and points the
// profile at it. The two steps are not atomic: a failed avatar step leaves
// the profile update in place.
func (e *ProfileEditor) Save(ctx context.Context, form client.SaveUserDetail, avatar *attach.File) (*client.UserDetail, error) {
	if strings.TrimSpace(form.FullName) == "" {
		return nil, fail(e.notifier, client.Precondition("Please enter your full name"))
	}
	if form.ImageID == nil && e.current != nil {
		form.ImageID = e.current.ImageID
	}

	d, err := e.api.SaveUserDetail(ctx, form)
	if err != nil {
		return nil, fail(e.notifier, &attach.StepError{Step: StepProfile, Err: err})
	}
	e.current = d

	if avatar != nil {
		att, err := uploader(e.images)(ctx, *avatar)
		if err != nil {
			return d, fail(e.notifier, &attach.StepError{Step: StepAvatar, Err: err})
		}
		form.ImageID = &att.ID
		d, err = e.api.SaveUserDetail(ctx, form)
		if err != nil {
			return e.current, fail(e.notifier, &attach.StepError{Step: StepAvatar, Err: err})
		}
		e.current = d
	}
	notify.Success(e.notifier, "Profile saved")
	return d, nil
}
