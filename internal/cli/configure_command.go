package cli

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/souffleinspire/bananaImgGenaration/internal/config"
)

type configField struct {
	Key    string
	Label  string
	Help   string
	Value  string
	Secret bool
}

type configForm struct {
	Title  string
	Fields []configField
	Index  int
	Input  textinput.Model
	Error  string
	Saving bool
}

type configureModel struct {
	configPath string
	width      int
	height     int
	form       *configForm

	savedMessage string
	cancelled    bool
}

type configureSaveMsg struct {
	message string
	err     error
}

func runConfigure(args []string) error {
	fs := flag.NewFlagSet("configure", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("configure requires an interactive terminal (TTY); use `bananagen settings set` instead")
	}

	path := defaultIfEmpty(strings.TrimSpace(*configPath), config.DefaultPath)
	cfg, _, err := config.Load(path)
	if err != nil {
		return err
	}

	m := newConfigureModel(path, cfg, 100)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("configure requires an interactive terminal (TTY)")
		}
		return err
	}
	if fm, ok := finalModel.(configureModel); ok {
		if fm.cancelled {
			fmt.Println("configure cancelled; nothing saved")
			return nil
		}
		if fm.savedMessage != "" {
			fmt.Println(okStyle.Render(fm.savedMessage))
		}
	}
	return nil
}

func newConfigureModel(configPath string, cfg config.Config, width int) configureModel {
	return configureModel{
		configPath: configPath,
		width:      width,
		form:       newConfigForm(cfg, width),
	}
}

func newConfigForm(cfg config.Config, width int) *configForm {
	f := &configForm{
		Title: "bananagen configure",
		Fields: []configField{
			{Key: "api_key", Label: "API Key", Help: "Sent as a Bearer token to the generation endpoint", Value: cfg.APIKey, Secret: true},
			{Key: "api_url", Label: "API URL", Help: "Image generation endpoint (http or https)", Value: cfg.APIURL},
			{Key: "model", Label: "Model", Help: "Empty uses " + config.DefaultModel, Value: cfg.Model},
			{Key: "output_dir", Label: "Output Dir", Help: "Where images and image_state.json are written; empty uses " + config.DefaultOutputDir, Value: cfg.OutputDir},
		},
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 1024
	input.Width = clampInt(width-8, 20, 120)
	f.Input = input
	f.loadFieldIntoInput()
	f.Input.Focus()
	return f
}

func (m configureModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m configureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.Input.Width = clampInt(m.width-8, 20, 120)
		}
		return m, nil
	case configureSaveMsg:
		if msg.err != nil {
			if m.form != nil {
				m.form.Error = msg.err.Error()
				m.form.Saving = false
			}
			return m, nil
		}
		m.savedMessage = msg.message
		return m, tea.Quit
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	return m.updateForm(keyMsg)
}

func (m configureModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, tea.Quit
	}
	if m.form.Saving {
		return m, nil
	}

	key := strings.ToLower(msg.String())
	switch key {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "shift+tab":
		m.form.commitInput()
		if m.form.Index > 0 {
			m.form.Index--
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case "down", "tab":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 {
			m.form.Index++
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case "enter", "ctrl+s":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 && key != "ctrl+s" {
			m.form.Index++
			m.form.loadFieldIntoInput()
			return m, nil
		}
		cfg, err := m.form.toConfig()
		if err != nil {
			m.form.Error = err.Error()
			return m, nil
		}
		m.form.Error = ""
		m.form.Saving = true
		return m, saveConfigCmd(m.configPath, cfg)
	}

	var cmd tea.Cmd
	m.form.Input, cmd = m.form.Input.Update(msg)
	m.form.Fields[m.form.Index].Value = m.form.Input.Value()
	return m, cmd
}

func (m configureModel) View() string {
	if m.form == nil {
		return ""
	}
	width := m.width
	if width <= 0 {
		width = 100
	}

	header := titleStyle.Render(m.form.Title) + "\n" + mutedStyle.Render(m.configPath)
	hints := mutedStyle.Render("tab/shift+tab or up/down: move | enter: next/save | ctrl+s: save | esc: cancel")

	lines := make([]string, 0, len(m.form.Fields))
	for i, f := range m.form.Fields {
		prefix := "  "
		if i == m.form.Index {
			prefix = "> "
		}
		display := strings.TrimSpace(f.Value)
		if f.Secret {
			display = config.Config{APIKey: display}.Redacted().APIKey
		}
		if display == "" {
			display = mutedStyle.Render("(empty)")
		}
		lines = append(lines, wrapOrTrim(fmt.Sprintf("%s%s: %s", prefix, f.Label, display), maxInt(width-6, 20)))
	}

	curr := m.form.currentField()
	inputLabel := fmt.Sprintf("\n%s\n", curr.Label)
	inputHelp := ""
	if strings.TrimSpace(curr.Help) != "" {
		inputHelp = mutedStyle.Render(curr.Help) + "\n"
	}
	status := ""
	if m.form.Saving {
		status = mutedStyle.Render("\nSaving...")
	}
	if strings.TrimSpace(m.form.Error) != "" {
		status = "\n" + errorStyle.Render(m.form.Error)
	}

	panel := panelStyle.Width(maxInt(width, 40)).Render(strings.Join(lines, "\n") + inputLabel + inputHelp + m.form.Input.View() + status)
	return lipgloss.JoinVertical(lipgloss.Left, header, hints, panel)
}

func saveConfigCmd(configPath string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		if err := config.Save(configPath, cfg); err != nil {
			return configureSaveMsg{err: err}
		}
		saved, _, err := config.Load(configPath)
		if err != nil {
			return configureSaveMsg{err: err}
		}
		return configureSaveMsg{
			message: fmt.Sprintf(
				"saved %s: api_url=%s model=%s output_dir=%s ready=%t",
				configPath,
				defaultIfEmpty(saved.APIURL, "(empty)"),
				saved.Model,
				saved.OutputDir,
				saved.Ready(),
			),
		}
	}
}

func (f *configForm) currentField() configField {
	if len(f.Fields) == 0 {
		return configField{}
	}
	if f.Index < 0 {
		f.Index = 0
	}
	if f.Index >= len(f.Fields) {
		f.Index = len(f.Fields) - 1
	}
	return f.Fields[f.Index]
}

func (f *configForm) commitInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Fields[f.Index].Value = strings.TrimSpace(f.Input.Value())
}

func (f *configForm) loadFieldIntoInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.currentField()
	if curr.Secret {
		f.Input.EchoMode = textinput.EchoPassword
		f.Input.EchoCharacter = '•'
	} else {
		f.Input.EchoMode = textinput.EchoNormal
	}
	f.Input.SetValue(curr.Value)
	f.Input.CursorEnd()
}

func (f *configForm) toConfig() (config.Config, error) {
	if f == nil {
		return config.Config{}, errors.New("internal form error")
	}
	cfg := config.Config{}
	for _, field := range f.Fields {
		if err := cfg.Set(field.Key, field.Value); err != nil {
			return config.Config{}, err
		}
	}
	if cfg.APIURL != "" {
		u, err := url.Parse(cfg.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return config.Config{}, fmt.Errorf("api url must be an http(s) URL")
		}
	}
	return cfg, nil
}
