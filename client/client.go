// Package client is a typed client for the classifieds API. It centralizes
// request building, error mapping, and session-token handling so callers do
// not repeat fetch logic per view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/lastchancecy/apiserver/types"
)

const defaultRequestTimeout = 30 * time.Second

// APIError is a non-2xx response decoded into its message payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to one API server. After a successful Signin it retains the
// session token and sends it on identity-scoped calls.
type Client struct {
	baseURL    string
	httpClient *http.Client

	token  string
	userID int
}

// New constructs a Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

// SignupParams are the fields of the sign-up form.
type SignupParams struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, params SignupParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeAPIError(resp)
	}
	return nil
}

// Signin verifies credentials, retains the session token, and returns the
// signed-in user's id.
func (c *Client) Signin(ctx context.Context, email, password string) (int, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return 0, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/signin", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeAPIError(resp)
	}

	var payload struct {
		UserID int    `json:"userId"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	c.token = payload.Token
	c.userID = payload.UserID
	return payload.UserID, nil
}

// SignedIn reports whether a session token is held.
func (c *Client) SignedIn() bool {
	return c.token != ""
}

// UserID returns the id retained from the last successful Signin.
func (c *Client) UserID() int {
	return c.userID
}

// CreateAdParams are the fields of the ad-creation form.
type CreateAdParams struct {
	Title         string
	Description   string
	ImageFilename string
	Image         []byte
	DJ            int
	Staff         int
	PR            int
}

// CreateAd submits the multipart ad form.
func (c *Client) CreateAd(ctx context.Context, params CreateAdParams) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       params.Title,
		"description": params.Description,
		"userId":      fmt.Sprintf("%d", c.userID),
		"dj":          fmt.Sprintf("%d", params.DJ),
		"staff":       fmt.Sprintf("%d", params.Staff),
		"pr":          fmt.Sprintf("%d", params.PR),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}

	part, err := writer.CreateFormFile("image", params.ImageFilename)
	if err != nil {
		return err
	}
	if _, err := part.Write(params.Image); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/ads", writer.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeAPIError(resp)
	}
	return nil
}

// ListAds fetches the feed, newest first.
func (c *Client) ListAds(ctx context.Context) ([]types.Ad, error) {
	resp, err := c.do(ctx, http.MethodGet, "/ads", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var ads []types.Ad
	if err := json.NewDecoder(resp.Body).Decode(&ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// GetAd fetches one ad by id.
func (c *Client) GetAd(ctx context.Context, id int) (types.Ad, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ads/%d", id), "", nil)
	if err != nil {
		return types.Ad{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Ad{}, decodeAPIError(resp)
	}

	var ad types.Ad
	if err := json.NewDecoder(resp.Body).Decode(&ad); err != nil {
		return types.Ad{}, err
	}
	return ad, nil
}

// Profile is the subset of user fields shown on the profile page.
type Profile struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// GetProfile fetches the signed-in user's profile fields.
func (c *Client) GetProfile(ctx context.Context, userID int) (Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profile/%d", userID), "", nil)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, decodeAPIError(resp)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// GetUser fetches the signed-in user's full record.
func (c *Client) GetUser(ctx context.Context, id int) (types.User, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), "", nil)
	if err != nil {
		return types.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.User{}, decodeAPIError(resp)
	}

	var user types.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
