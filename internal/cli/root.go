package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "generate":
		return runGenerate(args[1:])
	case "remaining":
		return runRemaining(args[1:])
	case "integrate":
		return runIntegrate(args[1:])
	case "inline":
		return runInline(args[1:])
	case "status":
		return runStatus(args[1:])
	case "prompts":
		return runPrompts(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "configure":
		return runConfigure(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("bananagen: illustrate a static visual-story page with generated images")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  bananagen configure")
	fmt.Println("  bananagen generate")
	fmt.Println("  bananagen integrate")
	fmt.Println("  bananagen inline")
	fmt.Println()
	fmt.Println("Generation Commands:")
	fmt.Println("  generate   generate every prompt and write image_list.json")
	fmt.Println("  remaining  generate only prompts without an image on disk")
	fmt.Println("  status     show the per-image state table")
	fmt.Println("  prompts    list the active prompt set")
	fmt.Println()
	fmt.Println("Page Commands:")
	fmt.Println("  integrate  splice manifest images into the page placeholders")
	fmt.Println("  inline     write a copy of the page with images embedded as base64")
	fmt.Println()
	fmt.Println("Setup Commands:")
	fmt.Println("  configure  interactive config editor")
	fmt.Println("  settings   show/update config.json values")
	fmt.Println("  doctor     check config, credentials, and output directory")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Ctrl+C stops a generation run; rerun `bananagen remaining` to continue")
}
