package htmlpage

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/manifest"
	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const (
	DefaultHTMLPath  = "visual-story.html"
	DefaultMinImages = 7
	backupSuffix     = ".backup"
)

var (
	ErrManifestMissing = errors.New("image manifest not found")
	ErrTooFewImages    = errors.New("not enough images in manifest")
	ErrHTMLMissing     = errors.New("html document not found")
)

var placeholderPattern = regexp.MustCompile(`<div class="card layout-[abc]">\s*<div class="illustration-area pattern-\d+"></div>`)

type IntegrateOptions struct {
	HTMLPath     string
	ManifestPath string
	// MinImages defaults to DefaultMinImages when zero.
	MinImages int
}

type Placement struct {
	Index   int    `json:"index"`
	Path    string `json:"path"`
	Layout  string `json:"layout"`
	Matched bool   `json:"matched"`
}

type IntegrateResult struct {
	HTMLPath   string      `json:"html_path"`
	Backup     string      `json:"backup"`
	Updated    bool        `json:"updated"`
	Placements []Placement `json:"placements"`
}

// LayoutFor returns the card layout class for position i: c for the cover,
// then alternating a and b.
func LayoutFor(i int) string {
	if i == 0 {
		return "c"
	}
	if i%2 == 1 {
		return "a"
	}
	return "b"
}

// Integrate splices manifest paths into the placeholder cards of the
// document, one first-remaining match per path.
func Integrate(opts IntegrateOptions) (IntegrateResult, error) {
	htmlPath := normalize(opts.HTMLPath, DefaultHTMLPath)
	minImages := opts.MinImages
	if minImages <= 0 {
		minImages = DefaultMinImages
	}

	paths, err := readManifest(opts.ManifestPath)
	if err != nil {
		return IntegrateResult{}, err
	}
	if len(paths) < minImages {
		return IntegrateResult{}, fmt.Errorf("%w: need at least %d, have %d", ErrTooFewImages, minImages, len(paths))
	}

	original, err := readHTML(htmlPath)
	if err != nil {
		return IntegrateResult{}, err
	}

	content := original
	placements := make([]Placement, 0, len(paths))
	for i, p := range paths {
		layout := LayoutFor(i)
		loc := placeholderPattern.FindStringIndex(content)
		placement := Placement{Index: i, Path: p, Layout: layout, Matched: loc != nil}
		if loc != nil {
			content = content[:loc[0]] + cardMarkup(layout, p) + content[loc[1]:]
		}
		placements = append(placements, placement)
	}

	backup := htmlPath + backupSuffix
	if err := runstore.WriteBytes(backup, []byte(original)); err != nil {
		return IntegrateResult{}, fmt.Errorf("write backup: %w", err)
	}
	updated := content != original
	if updated {
		if err := runstore.WriteBytes(htmlPath, []byte(content)); err != nil {
			return IntegrateResult{}, fmt.Errorf("write html: %w", err)
		}
	}

	return IntegrateResult{
		HTMLPath:   htmlPath,
		Backup:     backup,
		Updated:    updated,
		Placements: placements,
	}, nil
}

func cardMarkup(layout, path string) string {
	return `<div class="card layout-` + layout + `">` + "\n" +
		`        <div class="illustration-area" style="background-image: url('` + path + `');"></div>`
}

func readManifest(path string) ([]string, error) {
	paths, err := manifest.Read(path)
	if err != nil {
		if errors.Is(err, manifest.ErrMissing) {
			return nil, fmt.Errorf("%w: %v", ErrManifestMissing, err)
		}
		return nil, err
	}
	return paths, nil
}

func readHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrHTMLMissing, path)
		}
		return "", fmt.Errorf("read html %s: %w", path, err)
	}
	return string(data), nil
}

func normalize(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
