package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/codr1/WarungWareg/internal/models"
)

const (
	profilePath    = "/user/profile"
	loginPath      = "/user/login"
	registerPath   = "/user/register"
	updateUserPath = "/user/update-user"
)

// Profile loads the token holder's profile from the {user: {...}} envelope.
func (c *Client) Profile(ctx context.Context, token string) (models.User, error) {
	var envelope struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: profilePath, token: token}, &envelope); err != nil {
		return models.User{}, err
	}
	if envelope.User == nil {
		return models.User{}, &SchemaError{Path: profilePath, Field: "user", Reason: "is required"}
	}
	return *envelope.User, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        loginPath,
		body:        body,
		contentType: "application/json",
	}, &resp); err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Register creates an account; profilePic may be nil.
func (c *Client) Register(ctx context.Context, email, password string, profilePic *Upload) error {
	body, contentType, err := multipartBody([]formField{
		{"email", email},
		{"password", password},
	}, "profilePic", profilePic)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        registerPath,
		body:        body,
		contentType: contentType,
	}, nil)
}

// UpdateUser changes the email and optionally the profile picture, returning
// the updated profile from the {data: {...}} envelope.
func (c *Client) UpdateUser(ctx context.Context, token, email string, profilePic *Upload) (models.User, error) {
	body, contentType, err := multipartBody([]formField{{"email", email}}, "profilePic", profilePic)
	if err != nil {
		return models.User{}, err
	}
	var envelope struct {
		Data *models.User `json:"data"`
	}
	if err := c.do(ctx, request{
		method:      http.MethodPut,
		path:        updateUserPath,
		token:       token,
		body:        body,
		contentType: contentType,
	}, &envelope); err != nil {
		return models.User{}, err
	}
	if envelope.Data == nil {
		return models.User{}, &SchemaError{Path: updateUserPath, Field: "data", Reason: "is required"}
	}
	return *envelope.Data, nil
}
