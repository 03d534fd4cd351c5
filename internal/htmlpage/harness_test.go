package htmlpage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/souffleinspire/bananaImgGenaration/internal/manifest"
)

func storyHTML(cards int) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	layouts := []string{"c", "a", "b"}
	for i := 0; i < cards; i++ {
		fmt.Fprintf(&b, "<div class=\"card layout-%s\">\n        <div class=\"illustration-area pattern-%d\"></div>\n        <p>card %d</p>\n</div>\n", layouts[i%3], i+1, i)
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func writeFixture(t *testing.T, cards int, paths []string) (htmlPath, manifestPath string) {
	t.Helper()
	dir := t.TempDir()
	htmlPath = filepath.Join(dir, "visual-story.html")
	manifestPath = filepath.Join(dir, "image_list.json")
	if err := os.WriteFile(htmlPath, []byte(storyHTML(cards)), 0o644); err != nil {
		t.Fatalf("write html: %v", err)
	}
	if paths != nil {
		if err := manifest.Write(manifestPath, paths); err != nil {
			t.Fatalf("write manifest: %v", err)
		}
	}
	return htmlPath, manifestPath
}

func imagePaths(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("images/card_%02d_20250101_000000.png", i)
	}
	return out
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
