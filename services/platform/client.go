// Package platformsvc is the thin client for the remote platform API that
// owns all business logic (users, organizations, cohorts, programs, reports,
// payments). The gateway only ever sends the stored token as a bearer
// credential and interprets 401s as "clear the session".
package platformsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrUnauthorized = errors.New("upstream rejected the token")
	ErrNotFound     = errors.New("not found upstream")
)

type (
	Client struct {
		baseURL string
		client  *http.Client
		logger  core.Logger
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	// Organization is the subset of organization details the account menu
	// displays.
	Organization struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Upstream.BaseURL, "/"),
		// every upstream call carries a bounded timeout
		client: &http.Client{Timeout: conf.Upstream.Timeout},
		logger: logger,
	}
}

// Login exchanges credentials for a platform token. The platform owns
// authentication entirely; the gateway never sees password hashes.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", errors.Wrap(err, "marshalling credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building login request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling upstream login")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusBadRequest:
		return "", ErrUnauthorized
	default:
		return "", errors.Errorf("upstream login: unexpected status %d", res.StatusCode)
	}

	var data LoginResponse
	if err = json.NewDecoder(res.Body).Decode(&data); err != nil {
		return "", errors.Wrap(err, "decoding login response")
	}
	if data.Token == "" {
		return "", errors.New("upstream login: empty token")
	}
	return data.Token, nil
}

// Organization fetches organization details by id with the stored token as
// the Authorization header.
func (c *Client) Organization(ctx context.Context, token, id string) (Organization, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, fmt.Sprintf("%s/organizations/%s", c.baseURL, id), nil)
	if err != nil {
		return Organization{}, errors.Wrap(err, "building organization request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.client.Do(req)
	if err != nil {
		return Organization{}, errors.Wrap(err, "calling upstream organization")
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return Organization{}, ErrUnauthorized
	case http.StatusNotFound:
		return Organization{}, ErrNotFound
	default:
		return Organization{}, errors.Errorf("upstream organization: unexpected status %d", res.StatusCode)
	}

	var org Organization
	if err = json.NewDecoder(res.Body).Decode(&org); err != nil {
		return Organization{}, errors.Wrap(err, "decoding organization response")
	}
	return org, nil
}
