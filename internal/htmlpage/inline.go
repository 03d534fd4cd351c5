package htmlpage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const (
	ItemInlined       = "inlined"
	ItemMissingFile   = "missing_file"
	ItemNotReferenced = "not_referenced"
)

type InlineOptions struct {
	HTMLPath     string
	ManifestPath string
	// OutputPath defaults to <stem>_base64<ext> next to HTMLPath.
	OutputPath string
}

type InlineItem struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Bytes  int    `json:"bytes,omitempty"`
}

type InlineResult struct {
	Backup string       `json:"backup"`
	Output string       `json:"output"`
	Items  []InlineItem `json:"items"`
}

func DefaultInlineOutput(htmlPath string) string {
	ext := filepath.Ext(htmlPath)
	return strings.TrimSuffix(htmlPath, ext) + "_base64" + ext
}

func MIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// Inline writes a sibling document where every url('<path>') reference from
// the manifest is replaced by a data: URI of the file's bytes.
func Inline(opts InlineOptions) (InlineResult, error) {
	htmlPath := normalize(opts.HTMLPath, DefaultHTMLPath)
	outPath := strings.TrimSpace(opts.OutputPath)
	if outPath == "" {
		outPath = DefaultInlineOutput(htmlPath)
	}

	paths, err := readManifest(opts.ManifestPath)
	if err != nil {
		return InlineResult{}, err
	}
	content, err := readHTML(htmlPath)
	if err != nil {
		return InlineResult{}, err
	}

	backup := htmlPath + backupSuffix
	if err := runstore.WriteBytes(backup, []byte(content)); err != nil {
		return InlineResult{}, fmt.Errorf("write backup: %w", err)
	}

	items := make([]InlineItem, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			items = append(items, InlineItem{Path: p, Status: ItemMissingFile})
			continue
		}
		ref := "url('" + p + "')"
		if !strings.Contains(content, ref) {
			items = append(items, InlineItem{Path: p, Status: ItemNotReferenced})
			continue
		}
		uri := "url('data:" + MIMEType(p) + ";base64," + base64.StdEncoding.EncodeToString(data) + "')"
		content = strings.ReplaceAll(content, ref, uri)
		items = append(items, InlineItem{Path: p, Status: ItemInlined, Bytes: len(data)})
	}

	if err := runstore.WriteBytes(outPath, []byte(content)); err != nil {
		return InlineResult{}, fmt.Errorf("write inlined html: %w", err)
	}
	return InlineResult{
		Backup: backup,
		Output: outPath,
		Items:  items,
	}, nil
}
