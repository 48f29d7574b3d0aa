package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strings"

	"github.com/fwojciec/ragchat"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/publicsuffix"
)

// Interface compliance checks.
var (
	_ ragchat.ChatService   = (*Client)(nil)
	_ ragchat.UploadService = (*Client)(nil)
)

// Client talks to the backend's upload and chat endpoints.
type Client struct {
	cfg        ragchat.Config
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its cookie jar, if any, is used
// as is; a client without a jar does not carry credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a [Client] for the backend described by cfg. The default HTTP
// client keeps cookies in a public-suffix aware jar.
func New(cfg ragchat.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("http: cookie jar: %w", err)
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Jar: jar},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Chat posts content to the chat endpoint and returns the reply text.
func (c *Client) Chat(ctx context.Context, content string) (string, error) {
	body, err := json.Marshal(chatRequest{Content: content})
	if err != nil {
		return "", fmt.Errorf("http: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(chatPath), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("http: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var resp chatResponse
	if err := c.do(req, "chat", &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", &ragchat.ServiceError{
			Op:   "chat",
			Kind: ragchat.ErrorDecode,
			Err:  errors.New(`response has no "response" field`),
		}
	}
	return *resp.Response, nil
}

// Upload posts f to the upload endpoint as a multipart form and returns the
// JSON document the backend answered with.
func (c *Client) Upload(ctx context.Context, f ragchat.File) (json.RawMessage, error) {
	body, contentType, err := multipartBody(f)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(uploadPath), body)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	var payload json.RawMessage
	if err := c.do(req, "upload", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// do sends req and decodes a 2xx JSON response into v. Every failure is
// reported as a *ragchat.ServiceError.
func (c *Client) do(req *http.Request, op string, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ragchat.ServiceError{Op: op, Kind: ragchat.ErrorTransport, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ragchat.ServiceError{Op: op, Kind: ragchat.ErrorTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ragchat.ServiceError{
			Op:         op,
			Kind:       ragchat.ErrorStatus,
			StatusCode: resp.StatusCode,
			Err:        errorDetail(data),
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ragchat.ServiceError{Op: op, Kind: ragchat.ErrorDecode, Err: err}
	}
	return nil
}

// errorDetail extracts a human-readable message from an error body. It
// returns nil for an empty body.
func errorDetail(body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		for _, s := range []string{apiErr.Error, apiErr.Detail, apiErr.Message} {
			if s != "" {
				return errors.New(s)
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil
	}
	return errors.New(runewidth.Truncate(text, maxErrorDetail, "..."))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody encodes f as the single part of a multipart/form-data body.
// The part carries the file's MIME type rather than the generic type
// multipart.Writer.CreateFormFile would use.
func multipartBody(f ragchat.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		uploadField, quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", mimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
