package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the application context",
	Long: `Generate the application context from the packaged bundle and print it.

Formats:
  text  human-readable summary (default)
  json  machine-readable, for packaging scripts
  yaml
  toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		ctx, err := loadContext(cmd)
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), ctx.Summary(), format)
	},
}

func printSummary(w io.Writer, s appctx.Summary, format string) error {
	switch format {
	case "", "text":
		_, err := io.WriteString(w, renderSummary(s))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", format)
	}
}

func renderSummary(s appctx.Summary) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true)
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Width(12)
	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		MarginTop(1)

	var b strings.Builder
	row := func(k, v string) {
		b.WriteString(keyStyle.Render(k) + v + "\n")
	}

	b.WriteString(titleStyle.Render(s.ProductName+" "+s.Version) + "\n")
	row("identifier", s.Identifier)
	if s.Description != "" {
		row("about", s.Description)
	}
	row("plugins", strings.Join(s.Plugins, ", "))

	b.WriteString(sectionStyle.Render("Windows") + "\n")
	for _, win := range s.Windows {
		row(win.Label, fmt.Sprintf("%q %dx%d (min %dx%d)", win.Title, win.Width, win.Height, win.MinWidth, win.MinHeight))
	}

	b.WriteString(sectionStyle.Render("Icons") + "\n")
	for _, ic := range s.Icons {
		row(fmt.Sprintf("%dx%d", ic.Width, ic.Height), ic.Path)
	}

	var size int64
	for _, a := range s.Assets {
		size += a.Size
	}
	b.WriteString(sectionStyle.Render("Frontend") + "\n")
	row("assets", fmt.Sprintf("%d files, %d bytes", len(s.Assets), size))
	return b.String()
}

func init() {
	contextCmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml or toml")
	addBundleFlag(contextCmd)
	rootCmd.AddCommand(contextCmd)
}
