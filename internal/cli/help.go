package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdtablefix/internal/ui/pretty"
)

// HelpStyles styles command help.
type HelpStyles struct {
	Heading    lipgloss.Style
	Command    lipgloss.Style
	Subcommand lipgloss.Style
	Flag       lipgloss.Style
	Dim        lipgloss.Style
}

// NewHelpStyles returns coloured styles, or plain ones when colour is off.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{Heading: plain, Command: plain, Subcommand: plain, Flag: plain, Dim: plain}
	}
	return &HelpStyles{
		Heading:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Command:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Subcommand: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help for a command tree.
type HelpFormatter struct {
	colorMode string
	writer    io.Writer
}

// NewHelpFormatter returns a formatter. colorMode is the fallback used when
// the command has no --color flag.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{colorMode: colorMode, writer: writer}
}

const helpTemplate = `{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}{{ heading "Usage:" }}{{if .Runnable}}
  {{ command .UseLine }}{{end}}{{if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}{{if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}{{end}}{{if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if .IsAvailableCommand}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags.FlagUsages }}{{end}}{{if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags.FlagUsages }}{{end}}{{if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.{{end}}
`

// flagLinePattern splits a pflag usage line into indent, flag names and type,
// and description.
//
//nolint:gochecknoglobals // Compiled once.
var flagLinePattern = regexp.MustCompile(`^(\s+)(\S.*?)(\s{2,})(\S.*)$`)

// ApplyToCommand installs the styled help and usage output on cmd. Children
// inherit it.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	render := func(command *cobra.Command) error {
		tmpl, err := template.New("help").Funcs(h.funcs(h.styles(command))).Parse(helpTemplate)
		if err != nil {
			return fmt.Errorf("parse help template: %w", err)
		}
		return tmpl.Execute(command.OutOrStdout(), command)
	}

	cmd.SetUsageFunc(render)
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := render(command); err != nil {
			command.PrintErrln(err)
		}
	})
}

func (h *HelpFormatter) styles(cmd *cobra.Command) *HelpStyles {
	mode := h.colorMode
	if flag := cmd.Flag("color"); flag != nil {
		mode = flag.Value.String()
	}
	w := h.writer
	if w == nil {
		w = cmd.OutOrStdout()
	}
	return NewHelpStyles(pretty.IsColorEnabled(mode, w))
}

func (h *HelpFormatter) funcs(styles *HelpStyles) template.FuncMap {
	return template.FuncMap{
		"heading":    styles.Heading.Render,
		"command":    styles.Command.Render,
		"subcommand": styles.Subcommand.Render,
		"dim":        styles.Dim.Render,
		"flags":      func(usages string) string { return styleFlagUsages(styles, usages) },
		"rpad":       rpad,
		"trimRight":  trimTrailingWhitespace,
	}
}

// styleFlagUsages colours the flag names of pflag's usage block and dims
// their value types, keeping pflag's column alignment.
func styleFlagUsages(styles *HelpStyles, usages string) string {
	lines := strings.Split(strings.TrimRight(usages, "\n"), "\n")
	for i, line := range lines {
		m := flagLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var names []string
		for _, tok := range strings.Fields(m[2]) {
			if strings.HasPrefix(tok, "-") {
				names = append(names, styles.Flag.Render(tok))
			} else {
				names = append(names, styles.Dim.Render(tok))
			}
		}
		lines[i] = m[1] + strings.Join(names, " ") + m[3] + m[4]
	}
	return strings.Join(lines, "\n")
}

func rpad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-len(s), 0))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}
