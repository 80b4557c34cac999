// Package social is the thin X API v2 client the autopost service
// publishes through: posting, media upload, and the monthly usage
// query that drives tier detection. Nothing here has policy; all
// admission and guard decisions live in the callers.
package social

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"purrple/internal/config"
	"purrple/internal/logging"
)

// ErrForbidden is returned when an endpoint answers 403. On the usage
// endpoint this is the platform's way of saying "free tier", not an
// outage.
var ErrForbidden = errors.New("forbidden")

// Client talks to the X API with an app bearer token.
type Client struct {
	http          *http.Client
	baseURL       string
	uploadBaseURL string
	token         string
	log           *logging.Logger
}

// NewClient creates a client from the social config section.
func NewClient(cfg config.SocialConfig, timeout time.Duration) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.twitter.com/2"
	}
	upload := strings.TrimSuffix(cfg.UploadBaseURL, "/")
	if upload == "" {
		upload = "https://upload.twitter.com/1.1"
	}
	return &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       base,
		uploadBaseURL: upload,
		token:         cfg.BearerToken,
		log:           logging.Get(logging.CategorySocial),
	}
}

// Publish posts text, optionally attaching previously uploaded media,
// and returns the published post ID.
func (c *Client) Publish(ctx context.Context, text string, mediaIDs []string) (string, error) {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tweets", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create post request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("publish: %w", ErrForbidden)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("publish: HTTP %d: %s", resp.StatusCode, readBody(resp.Body))
	}

	var out struct {
		Data struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("publish response missing post id")
	}

	c.log.Info("published post %s (%d chars)", out.Data.ID, len(text))
	return out.Data.ID, nil
}

// UploadMedia uploads raw image bytes and returns the media ID to
// attach to a post.
func (c *Client) UploadMedia(ctx context.Context, data []byte) (string, error) {
	form := url.Values{}
	form.Set("media_data", base64.StdEncoding.EncodeToString(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.uploadBaseURL+"/media/upload.json", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload media: HTTP %d: %s", resp.StatusCode, readBody(resp.Body))
	}

	var out struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.MediaIDString == "" {
		return "", fmt.Errorf("upload response missing media id")
	}

	c.log.Info("uploaded media %s (%d bytes)", out.MediaIDString, len(data))
	return out.MediaIDString, nil
}

// UsageData is the usage endpoint's answer. The platform serializes
// the numeric fields as strings.
type UsageData struct {
	ProjectCap   int64
	ProjectUsage int64
	CapResetDay  int
	ProjectID    string
}

// Usage queries the monthly post usage for the project behind the
// bearer token. A 403 surfaces as ErrForbidden so the tier tracker can
// treat it as the free-tier signal it is.
func (c *Client) Usage(ctx context.Context) (UsageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/usage/tweets", nil)
	if err != nil {
		return UsageData{}, fmt.Errorf("create usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return UsageData{}, fmt.Errorf("usage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return UsageData{}, ErrForbidden
	}
	if resp.StatusCode != http.StatusOK {
		return UsageData{}, fmt.Errorf("usage: HTTP %d: %s", resp.StatusCode, readBody(resp.Body))
	}

	var out struct {
		Data struct {
			ProjectCap   flexInt `json:"project_cap"`
			ProjectUsage flexInt `json:"project_usage"`
			CapResetDay  flexInt `json:"cap_reset_day"`
			ProjectID    string  `json:"project_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return UsageData{}, fmt.Errorf("decode usage response: %w", err)
	}

	return UsageData{
		ProjectCap:   int64(out.Data.ProjectCap),
		ProjectUsage: int64(out.Data.ProjectUsage),
		CapResetDay:  int(out.Data.CapResetDay),
		ProjectID:    out.Data.ProjectID,
	}, nil
}

// flexInt decodes a JSON number that may arrive as either a number or
// a quoted string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %q as integer: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return strings.TrimSpace(string(b))
}
