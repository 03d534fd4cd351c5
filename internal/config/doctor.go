package config

import (
	"os"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

type DoctorOptions struct {
	ConfigPath string
	HTMLPath   string
}

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func Doctor(opts DoctorOptions) (DoctorResult, error) {
	configPath := normalizePath(opts.ConfigPath)
	cfg, fromFile, err := Load(configPath)
	if err != nil {
		return DoctorResult{
			OK: false,
			Checks: []DoctorCheck{{
				Name:    "config:file",
				OK:      false,
				Message: err.Error(),
			}},
		}, nil
	}

	checks := make([]DoctorCheck, 0, 4)
	checks = append(checks, DoctorCheck{
		Name:    "config:file",
		OK:      fromFile,
		Message: presenceMessage(fromFile, configPath, "config file"),
	})
	checks = append(checks, DoctorCheck{
		Name:    "config:credentials",
		OK:      cfg.Ready(),
		Message: credentialsMessage(cfg),
	})

	outOK, outMessage := ensureWritableDir(cfg.OutputDir)
	checks = append(checks, DoctorCheck{
		Name:    "directory:output",
		OK:      outOK,
		Message: outMessage,
	})

	htmlPath := strings.TrimSpace(opts.HTMLPath)
	if htmlPath != "" {
		found := runstore.FileExists(htmlPath)
		checks = append(checks, DoctorCheck{
			Name:    "file:html",
			OK:      found,
			Message: presenceMessage(found, htmlPath, "html document"),
		})
	}

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return DoctorResult{OK: ok, Checks: checks}, nil
}

func presenceMessage(ok bool, path, name string) string {
	if ok {
		return name + " found at " + path
	}
	return name + " not found at " + path
}

func credentialsMessage(cfg Config) string {
	var missing []string
	if strings.TrimSpace(cfg.APIKey) == "" {
		missing = append(missing, "api_key")
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		missing = append(missing, "api_url")
	}
	if len(missing) == 0 {
		return "api_key and api_url set"
	}
	return "missing " + strings.Join(missing, ", ")
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := runstore.Mkdir(path); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "bananagen-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, path + " writable"
}
