package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// SaveUserDetail creates or updates the caller's profile.
func (c *Client) SaveUserDetail(ctx context.Context, req SaveUserDetail) (*UserDetail, error) {
	var d UserDetail
	if err := c.call(ctx, http.MethodPost, "/api/UserDetails/create-update-user-detail", req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// MyUserDetail returns the caller's profile. The server answers 400 when
// none has been saved yet.
func (c *Client) MyUserDetail(ctx context.Context) (*UserDetail, error) {
	var d UserDetail
	if err := c.call(ctx, http.MethodGet, "/api/UserDetails/get-user-detail-for-user", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListUserDetails fetches one page of profiles. Admin only. Recognised
// filters are fullName, userName and userId.
func (c *Client) ListUserDetails(ctx context.Context, q PageQuery) (Page[UserDetail], error) {
	var page Page[UserDetail]
	err := c.call(ctx, http.MethodPost, "/api/UserDetails/get-all-details", q, &page)
	return page, err
}

// Avatar returns the avatar path of userName, or "" when they have none.
func (c *Client) Avatar(ctx context.Context, userName string) (string, error) {
	var path string
	err := c.call(ctx, http.MethodGet, "/api/UserDetails/get-user-avatar-by-userName/"+url.PathEscape(userName), nil, &path)
	return path, err
}

// RequestPayment records a pending payment and returns the gateway URL the
// member is sent to.
func (c *Client) RequestPayment(ctx context.Context, req PaymentRequest) (string, error) {
	op := http.MethodPost + " /api/Payments/request-payment"
	data, err := json.Marshal(req)
	if err != nil {
		return "", transportError(op, err)
	}
	env, err := c.send(ctx, http.MethodPost, "/api/Payments/request-payment", bytes.NewReader(data), "application/json")
	if err != nil {
		return "", err
	}
	var body struct {
		URL    string `json:"url"`
		Result struct {
			URL string `json:"url"`
		} `json:"result"`
	}
	if err := json.Unmarshal(env.raw, &body); err != nil {
		return "", transportError(op, err)
	}
	switch {
	case body.URL != "":
		return body.URL, nil
	case body.Result.URL != "":
		return body.Result.URL, nil
	default:
		return "", transportError(op, errors.New("payment url missing from response"))
	}
}

func (c *Client) ListPonds(ctx context.Context) ([]Pond, error) {
	var ponds []Pond
	err := c.call(ctx, http.MethodGet, "/api/UserPond/getall", nil, &ponds)
	return ponds, err
}

func (c *Client) GetPond(ctx context.Context, id uint) (*Pond, error) {
	var p Pond
	if err := c.call(ctx, http.MethodGet, "/api/UserPond/viewdetails/"+idPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AddPond(ctx context.Context, req SavePond) (*Pond, error) {
	var p Pond
	if err := c.call(ctx, http.MethodPost, "/api/UserPond/add", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePond(ctx context.Context, id uint, req SavePond) (*Pond, error) {
	var p Pond
	if err := c.call(ctx, http.MethodPut, "/api/UserPond/update/"+idPath(id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePond(ctx context.Context, id uint) error {
	return c.call(ctx, http.MethodDelete, "/api/UserPond/delete/"+idPath(id), nil, nil)
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
