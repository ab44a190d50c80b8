// Package output renders CLI results as styled text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    r.NewStyle().Bold(true),
	}
}

// Renderer writes command output.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
	tty    bool
}

// NewRenderer creates a Renderer. Colors are only emitted when out is a
// terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeText
	}
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}

	lr := lipgloss.NewRenderer(out)
	if !tty {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: newStyles(lr),
		tty:    tty,
	}
}

// Mode returns the output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.tty }

// Styles returns the text styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the primary output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header.
func (r *Renderer) Header(text string) {
	r.Println(r.styles.Header.Render(text))
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render("✓ " + msg))
}

// Warning writes a warning to the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Muted renders text in the muted style.
func (r *Renderer) Muted(text string) string {
	return r.styles.Muted.Render(text)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Data writes v in the structured mode. It reports false in text mode so
// callers can fall through to their own rendering.
func (r *Renderer) Data(v any) (bool, error) {
	switch r.mode {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	default:
		return false, nil
	}
}

// Table writes rows as a light box table.
func (r *Renderer) Table(header []string, rows [][]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.SetStyle(table.StyleLight)

	h := make(table.Row, len(header))
	for i, v := range header {
		h[i] = v
	}
	tw.AppendHeader(h)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		tw.AppendRow(tr)
	}
	tw.Render()
}

// FormatKeyValue formats a label and value on one line.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%-16s %s", key+":", value)
}

// FormatStatus colors a connection or pipeline status word.
func (r *Renderer) FormatStatus(status string) string {
	switch status {
	case "Connected", "Succeeded":
		return r.styles.Success.Render(status)
	case "Testing", "Running":
		return r.styles.Warning.Render(status)
	case "Disconnected", "Failed":
		return r.styles.Error.Render(status)
	default:
		return r.styles.Muted.Render(status)
	}
}
