package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/souffleinspire/bananaImgGenaration/internal/config"
	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const (
	DefaultGenerateTimeout = 60 * time.Second
	DefaultDownloadTimeout = 30 * time.Second

	imageSize    = "1024x1024"
	imageQuality = "standard"

	promptPreviewChars = 100
	bodyPreviewChars   = 500
	maxResponseBytes   = 16 << 20
	maxImageBytes      = 64 << 20
)

var (
	ErrConfigMissing = errors.New("api_key or api_url not configured")
	ErrBodyTooLarge  = errors.New("body exceeds size limit")
)

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type generateResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type Client struct {
	cfg      config.Config
	genHTTP  *http.Client
	dlHTTP   *http.Client
	now      func() time.Time
	progress io.Writer

	maxResponse int64
	maxImage    int64
}

type Option func(*Client)

func WithGenerateHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.genHTTP = c
		}
	}
}

func WithDownloadHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.dlHTTP = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		if now != nil {
			cl.now = now
		}
	}
}

func WithProgress(w io.Writer) Option {
	return func(cl *Client) {
		if w != nil {
			cl.progress = w
		}
	}
}

func New(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		genHTTP:  &http.Client{Timeout: DefaultGenerateTimeout},
		dlHTTP:   &http.Client{Timeout: DefaultDownloadTimeout},
		now:      time.Now,
		progress: os.Stdout,

		maxResponse: maxResponseBytes,
		maxImage:    maxImageBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate turns one prompt into one image file under the configured output
// directory.
func (c *Client) Generate(ctx context.Context, prompt, prefix string, index int) Outcome {
	if !c.cfg.Ready() {
		return c.fail(index, ReasonConfigMissing, ErrConfigMissing)
	}

	outPath := filepath.Join(c.cfg.OutputDir, FileName(prefix, index, c.now()))
	fmt.Fprintf(c.progress, "  prompt: %s...\n", preview(prompt, promptPreviewChars))

	body, err := json.Marshal(generateRequest{
		Prompt:  prompt,
		Model:   c.cfg.Model,
		Size:    imageSize,
		Quality: imageQuality,
	})
	if err != nil {
		return c.fail(index, ReasonRequestError, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return c.fail(index, ReasonRequestError, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.genHTTP.Do(req)
	if err != nil {
		return c.fail(index, ReasonTransportError, err)
	}
	raw, readErr := readLimited(resp.Body, c.maxResponse)
	_ = resp.Body.Close()
	fmt.Fprintf(c.progress, "  status: %d\n", resp.StatusCode)
	if errors.Is(readErr, ErrBodyTooLarge) {
		return c.fail(index, ReasonBadShape, fmt.Errorf("read response: %w", readErr))
	}
	if readErr != nil {
		return c.fail(index, ReasonTransportError, fmt.Errorf("read response: %w", readErr))
	}

	if resp.StatusCode != http.StatusOK {
		return c.fail(index, ReasonBadStatus, fmt.Errorf("status %d: %s", resp.StatusCode, preview(string(raw), bodyPreviewChars)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return c.fail(index, ReasonBadJSON, fmt.Errorf("parse response: %w", err))
	}
	if len(parsed.Data) == 0 {
		return c.fail(index, ReasonBadShape, fmt.Errorf("response has no data entries: %s", preview(string(raw), bodyPreviewChars)))
	}
	imageURL := strings.TrimSpace(parsed.Data[0].URL)
	if imageURL == "" {
		return c.fail(index, ReasonBadShape, errors.New("response has no image url"))
	}

	data, reason, err := c.download(ctx, imageURL)
	if err != nil {
		return c.fail(index, reason, err)
	}
	if err := runstore.WriteBytes(outPath, data); err != nil {
		return c.fail(index, ReasonWriteError, err)
	}

	fmt.Fprintf(c.progress, "  saved: %s\n", outPath)
	return Outcome{
		Index:  index,
		Status: StatusGenerated,
		Path:   outPath,
	}
}

func (c *Client) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ReasonRequestError, err
	}
	resp, err := c.dlHTTP.Do(req)
	if err != nil {
		return nil, ReasonTransportError, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ReasonDownloadError, fmt.Errorf("download status %d from %s", resp.StatusCode, url)
	}
	data, err := readLimited(resp.Body, c.maxImage)
	if err != nil {
		return nil, ReasonDownloadError, fmt.Errorf("read image body: %w", err)
	}
	return data, "", nil
}

// readLimited reads all of r, failing with ErrBodyTooLarge rather than
// returning a truncated body.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)
	}
	return data, nil
}

func (c *Client) fail(index int, reason string, err error) Outcome {
	fmt.Fprintf(c.progress, "  fail: %s: %v\n", reason, err)
	return Outcome{
		Index:  index,
		Status: StatusFailed,
		Reason: reason,
		Err:    err,
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
