package cli

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"tasklog/internal/apperr"
	"tasklog/internal/models"
)

// renderTasks formats tasks for the terminal. Markdown is the default;
// json and yaml are for piping into other tools.
func renderTasks(tasks []models.Task, format string, short bool) (string, error) {
	switch format {
	case "markdown", "":
		return renderMarkdown(tasks, short), nil
	case "json":
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(tasks)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", apperr.Validationf("unknown format %q (known: markdown, json, yaml)", format)
	}
}

func renderMarkdown(tasks []models.Task, short bool) string {
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString("- **")
		b.WriteString(t.Date)
		b.WriteString("**")
		if len(t.Tags) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(t.Tags, ", "))
			b.WriteString(")")
		}
		b.WriteString(": ")
		desc := t.Description
		if short && t.ShortDescription != "" {
			desc = t.ShortDescription
		}
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}
