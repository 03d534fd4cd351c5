package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/config"
)

var settingsFlagKeys = []string{"api-key", "api-url", "model", "output-dir"}

func runSettings(args []string) error {
	if len(args) == 0 {
		printSettingsUsage()
		return nil
	}
	switch args[0] {
	case "show":
		return runSettingsShow(args[1:])
	case "set":
		return runSettingsSet(args[1:])
	case "help", "-h", "--help":
		printSettingsUsage()
		return nil
	default:
		printSettingsUsage()
		return fmt.Errorf("unknown settings subcommand %q", args[0])
	}
}

func runSettingsShow(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := defaultIfEmpty(strings.TrimSpace(*configPath), config.DefaultPath)
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	shown := cfg.Redacted()
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": path,
			"config":      shown,
			"ready":       cfg.Ready(),
		})
	}

	fmt.Printf("config: %s\n", path)
	printConfigValues(shown)
	if !cfg.Ready() {
		fmt.Println(mutedStyle.Render("api_key and api_url are required for generation"))
	}
	return nil
}

func runSettingsSet(args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	fs.String("api-key", "", "generation API credential")
	fs.String("api-url", "", "generation endpoint URL")
	fs.String("model", "", "model identifier")
	fs.String("output-dir", "", "image output directory")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	changed := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		for _, k := range settingsFlagKeys {
			if f.Name == k {
				changed[k] = f.Value.String()
			}
		}
	})
	if len(changed) == 0 {
		return errors.New("nothing to set: pass --api-key, --api-url, --model, or --output-dir")
	}

	path := defaultIfEmpty(strings.TrimSpace(*configPath), config.DefaultPath)
	cfg, _, err := config.Load(path)
	if err != nil {
		return err
	}
	for _, k := range settingsFlagKeys {
		v, ok := changed[k]
		if !ok {
			continue
		}
		if err := cfg.Set(strings.ReplaceAll(k, "-", "_"), v); err != nil {
			return err
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	saved, _, err := config.Load(path)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": path,
			"config":      saved.Redacted(),
			"ready":       saved.Ready(),
		})
	}
	fmt.Printf("updated settings in %s\n", path)
	printConfigValues(saved.Redacted())
	return nil
}

func printConfigValues(cfg config.Config) {
	fmt.Println(kv("api_key", defaultIfEmpty(cfg.APIKey, "(empty)")))
	fmt.Println(kv("api_url", defaultIfEmpty(cfg.APIURL, "(empty)")))
	fmt.Println(kv("model", cfg.Model))
	fmt.Println(kv("output_dir", cfg.OutputDir))
}

func printSettingsUsage() {
	fmt.Println("settings commands:")
	fmt.Println("  settings show [--config config.json]")
	fmt.Println("  settings set [--api-key K] [--api-url URL] [--model M] [--output-dir DIR]")
}
