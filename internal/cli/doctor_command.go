package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/config"
	"github.com/souffleinspire/bananaImgGenaration/internal/htmlpage"
)

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	htmlPath := fs.String("html", htmlpage.DefaultHTMLPath, "html document to check (empty skips)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := config.Doctor(config.DoctorOptions{
		ConfigPath: strings.TrimSpace(*configPath),
		HTMLPath:   strings.TrimSpace(*htmlPath),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	for _, c := range res.Checks {
		status := okStyle.Render("ok")
		if !c.OK {
			status = errorStyle.Render("fail")
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}
