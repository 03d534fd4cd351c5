package cli

import (
	"flag"
	"fmt"

	"github.com/souffleinspire/bananaImgGenaration/internal/prompts"
)

func runPrompts(args []string) error {
	fs := flag.NewFlagSet("prompts", flag.ContinueOnError)
	promptsPath := fs.String("prompts", "", "JSON array of prompts (default: built-in story cards)")
	full := fs.Bool("full", false, "print full prompt text")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := prompts.Load(*promptsPath)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(list)
	}

	for i, p := range list {
		text := p
		if !*full {
			text = truncateRunes(p, 100)
		}
		fmt.Printf("%02d  %s\n", i, text)
	}
	fmt.Println(mutedStyle.Render(fmt.Sprintf("%d prompts", len(list))))
	return nil
}
