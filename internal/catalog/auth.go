package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// ErrInvalidCredentials is returned when the backend rejects a login or
// answers without an access token.
var ErrInvalidCredentials = errors.New("catalog: invalid credentials")

const defaultAvatar = "https://picsum.photos/800"

var _ port.Authenticator = (*Client)(nil)

// Backends disagree on field names, so responses are read as loose maps and
// every field is looked up through a list of known spellings.
var (
	accessTokenKeys  = []string{"access_token", "accessToken", "token"}
	refreshTokenKeys = []string{"refresh_token", "refreshToken"}
	firstNameKeys    = []string{"firstName", "first_name"}
	lastNameKeys     = []string{"lastName", "last_name"}
	avatarKeys       = []string{"avatar", "image", "picture"}
)

func (c *Client) Login(ctx context.Context, email, password string) (port.Tokens, error) {
	var resp map[string]any
	err := c.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		var status *StatusError
		if errors.As(err, &status) && (status.Code == http.StatusUnauthorized || status.Code == http.StatusBadRequest) {
			return port.Tokens{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return port.Tokens{}, err
	}

	tokens := port.Tokens{
		AccessToken:  firstString(resp, accessTokenKeys...),
		RefreshToken: firstString(resp, refreshTokenKeys...),
	}
	if tokens.AccessToken == "" {
		return port.Tokens{}, ErrInvalidCredentials
	}
	return tokens, nil
}

func (c *Client) Profile(ctx context.Context, accessToken string) (domain.User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return domain.User{}, fmt.Errorf("access token is empty")
	}

	var resp map[string]any
	if err := c.Get(ctx, "/auth/profile", &resp, WithBearer(accessToken)); err != nil {
		return domain.User{}, err
	}
	return mapUser(resp), nil
}

func (c *Client) Register(ctx context.Context, user domain.NewUser) (domain.User, error) {
	if strings.TrimSpace(user.Name) == "" {
		user.Name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	if strings.TrimSpace(user.Avatar) == "" {
		user.Avatar = defaultAvatar
	}

	var resp map[string]any
	if err := c.Post(ctx, "/users", user, &resp); err != nil {
		return domain.User{}, err
	}
	return mapUser(resp), nil
}

func mapUser(m map[string]any) domain.User {
	u := domain.User{
		ID:        firstInt(m, "id"),
		Name:      firstString(m, "name"),
		FirstName: firstString(m, firstNameKeys...),
		LastName:  firstString(m, lastNameKeys...),
		Username:  firstString(m, "username"),
		Email:     firstString(m, "email"),
		Role:      firstString(m, "role"),
		Avatar:    firstString(m, avatarKeys...),
	}
	if u.Name == "" {
		u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstInt(m map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}
