package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

const (
	headerAdminKey    = "x-admin-key"
	defaultUploadBase = "https://api.cloudinary.com/v1_1"
)

// Client talks to the portfolio API and uploads media straight to Cloudinary.
type Client struct {
	baseURL    string
	adminKey   string
	uploadBase string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUploadBase overrides the Cloudinary API base, e.g. for tests.
func WithUploadBase(base string) Option {
	return func(c *Client) { c.uploadBase = strings.TrimRight(base, "/") }
}

// NewClient creates an API client. adminKey may be empty when the server runs
// in public admin mode.
func NewClient(baseURL, adminKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminKey:   adminKey,
		uploadBase: defaultUploadBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CloudinaryHealth struct {
	CloudNameSet bool `json:"cloud_name_set"`
	APIKeySet    bool `json:"api_key_set"`
	APISecretSet bool `json:"api_secret_set"`
}

type Health struct {
	OK          bool             `json:"ok"`
	Env         string           `json:"env"`
	PublicAdmin bool             `json:"publicAdmin"`
	Cloudinary  CloudinaryHealth `json:"cloudinary"`
	Store       struct {
		Driver string `json:"driver"`
		Status string `json:"status"`
	} `json:"store"`
}

// Signature authorizes one direct upload.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

// Sign asks the server for an upload signature bound to folder.
func (c *Client) Sign(ctx context.Context, folder string) (Signature, error) {
	body := map[string]string{}
	if folder != "" {
		body["folder"] = folder
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/cloudinary/sign", body, &raw); err != nil {
		return Signature{}, err
	}

	var sig Signature
	if err := json.Unmarshal(raw, &sig); err != nil ||
		sig.Signature == "" || sig.APIKey == "" || sig.CloudName == "" || sig.Timestamp == 0 {
		return Signature{}, fmt.Errorf("invalid sign response from server: %s. Are the Cloudinary env vars set on the server?", string(raw))
	}
	return sig, nil
}

func (c *Client) List(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, in domain.CreateInput) (domain.Project, error) {
	var out domain.Project
	err := c.do(ctx, http.MethodPost, "/api/projects", in, &out)
	return out, err
}

// Update sends a shallow patch; only the keys present in patch change.
func (c *Client) Update(ctx context.Context, id string, patch map[string]any) (domain.Project, error) {
	var out domain.Project
	err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminKey != "" {
		req.Header.Set(headerAdminKey, c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{URL: fullURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, URL: fullURL, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", fullURL, err)
	}
	return nil
}
