package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/config"
	"github.com/souffleinspire/bananaImgGenaration/internal/imagegen"
	"github.com/souffleinspire/bananaImgGenaration/internal/manifest"
	"github.com/souffleinspire/bananaImgGenaration/internal/prompts"
	"github.com/souffleinspire/bananaImgGenaration/internal/story"
)

type generateSummary struct {
	ConfigPath   string       `json:"config_path"`
	OutputDir    string       `json:"output_dir"`
	ManifestPath string       `json:"manifest_path"`
	Result       story.Result `json:"result"`
}

func runGenerate(args []string) error {
	return runStory("generate", story.ModeAll, args)
}

func runRemaining(args []string) error {
	return runStory("remaining", story.ModeRemaining, args)
}

func runStory(name string, mode story.Mode, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	promptsPath := fs.String("prompts", "", "JSON array of prompts (default: built-in story cards)")
	prefix := fs.String("prefix", story.DefaultPrefix, "image file name prefix")
	manifestPath := fs.String("manifest", manifest.DefaultPath, "image manifest output path")
	outputDir := fs.String("output-dir", "", "image output directory override (default: config output_dir)")
	delay := fs.Duration("delay", story.DefaultDelay, "minimum delay between generation requests")
	selection := fs.String("select", string(story.SelectNewest), "file picked when an index has several images on disk: newest|first")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *delay < 0 {
		return fmt.Errorf("--delay must be >= 0")
	}
	sel, err := story.ParseSelection(*selection)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if dir := strings.TrimSpace(*outputDir); dir != "" {
		cfg.OutputDir = dir
	}
	if !cfg.Ready() {
		warnf("api_key or api_url not configured in %s; every image will fail", strings.TrimSpace(*configPath))
	}
	list, err := prompts.Load(*promptsPath)
	if err != nil {
		return err
	}

	progress := progressWriter(*jsonOut)
	ctx, stop := interruptContext()
	defer stop()

	client := imagegen.New(cfg, imagegen.WithProgress(progress))
	res, err := story.Generate(ctx, client, story.Options{
		Mode:      mode,
		Prompts:   list,
		Prefix:    *prefix,
		OutputDir: cfg.OutputDir,
		Delay:     *delay,
		Selection: sel,
		Progress:  progress,
	})
	if err != nil {
		return err
	}

	mPath := defaultIfEmpty(strings.TrimSpace(*manifestPath), manifest.DefaultPath)
	if err := manifest.Write(mPath, res.Paths); err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(generateSummary{
			ConfigPath:   strings.TrimSpace(*configPath),
			OutputDir:    cfg.OutputDir,
			ManifestPath: mPath,
			Result:       res,
		})
	}
	printGenerateSummary(progress, res, mPath)
	return nil
}

// loadConfig warns on a missing file and fails on a malformed one.
func loadConfig(path string) (config.Config, error) {
	path = defaultIfEmpty(strings.TrimSpace(path), config.DefaultPath)
	cfg, fromFile, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if !fromFile {
		warnf("config file %s not found", path)
	}
	return cfg, nil
}

func printGenerateSummary(w io.Writer, res story.Result, manifestPath string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s summary", res.Mode)))
	fmt.Fprintf(w, "prompts: %d\n", res.Total)
	fmt.Fprintf(w, "attempted: %d\n", res.Attempted)
	fmt.Fprintf(w, "generated: %s\n", okStyle.Render(fmt.Sprintf("%d", res.Generated)))
	if res.Failed > 0 {
		fmt.Fprintf(w, "failed: %s\n", errorStyle.Render(fmt.Sprintf("%d", res.Failed)))
	} else {
		fmt.Fprintln(w, "failed: 0")
	}
	if res.Mode == story.ModeRemaining {
		fmt.Fprintf(w, "skipped_existing: %d\n", res.Skipped)
	}
	for _, o := range res.Outcomes {
		if o.OK() {
			continue
		}
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %d. %s: %s", o.Index+1, o.Reason, truncateRunes(o.ErrorText(), 160))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "images:")
	if len(res.Paths) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (none)"))
	}
	for i, p := range res.Paths {
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}
	fmt.Fprintf(w, "manifest: %s (%d images)\n", manifestPath, len(res.Paths))
	fmt.Fprintf(w, "state: %s\n", res.StatePath)
	if res.Failed > 0 {
		fmt.Fprintln(w, mutedStyle.Render("next: rerun `bananagen remaining` to retry failed images"))
	}
}
