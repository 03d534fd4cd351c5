package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/htmlpage"
	"github.com/souffleinspire/bananaImgGenaration/internal/manifest"
)

func runIntegrate(args []string) error {
	fs := flag.NewFlagSet("integrate", flag.ContinueOnError)
	htmlPath := fs.String("html", htmlpage.DefaultHTMLPath, "html document to update")
	manifestPath := fs.String("manifest", manifest.DefaultPath, "image manifest path")
	minImages := fs.Int("min-images", htmlpage.DefaultMinImages, "refuse to update with fewer images than this")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *minImages < 1 {
		return fmt.Errorf("--min-images must be >= 1")
	}

	res, err := htmlpage.Integrate(htmlpage.IntegrateOptions{
		HTMLPath:     strings.TrimSpace(*htmlPath),
		ManifestPath: strings.TrimSpace(*manifestPath),
		MinImages:    *minImages,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	matched := 0
	for _, p := range res.Placements {
		if !p.Matched {
			warnf("no placeholder left for image %d (%s)", p.Index+1, p.Path)
			continue
		}
		matched++
	}
	fmt.Printf("backup: %s\n", res.Backup)
	if !res.Updated {
		fmt.Println(mutedStyle.Render("html unchanged: no placeholders matched"))
		return nil
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("updated: %s", res.HTMLPath)))
	fmt.Printf("inserted: %d/%d images\n", matched, len(res.Placements))
	fmt.Println(mutedStyle.Render("next: run `bananagen inline` to embed images for offline use"))
	return nil
}

func runInline(args []string) error {
	fs := flag.NewFlagSet("inline", flag.ContinueOnError)
	htmlPath := fs.String("html", htmlpage.DefaultHTMLPath, "html document to read")
	manifestPath := fs.String("manifest", manifest.DefaultPath, "image manifest path")
	output := fs.String("output", "", "output path (default: <name>_base64.html)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := htmlpage.Inline(htmlpage.InlineOptions{
		HTMLPath:     strings.TrimSpace(*htmlPath),
		ManifestPath: strings.TrimSpace(*manifestPath),
		OutputPath:   strings.TrimSpace(*output),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	fmt.Printf("backup: %s\n", res.Backup)
	inlined := 0
	for i, item := range res.Items {
		switch item.Status {
		case htmlpage.ItemInlined:
			inlined++
			fmt.Printf("[%d/%d] %s: inlined (%s)\n", i+1, len(res.Items), item.Path, formatBytesIEC(int64(item.Bytes)))
		case htmlpage.ItemMissingFile:
			fmt.Printf("[%d/%d] %s\n", i+1, len(res.Items), item.Path)
			warnf("image file missing, skipped: %s", item.Path)
		case htmlpage.ItemNotReferenced:
			fmt.Printf("[%d/%d] %s\n", i+1, len(res.Items), item.Path)
			warnf("no url('%s') reference in html, skipped", item.Path)
		}
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("written: %s", res.Output)))
	fmt.Printf("inlined: %d/%d images\n", inlined, len(res.Items))
	return nil
}
