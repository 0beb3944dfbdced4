package templates

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed script/*.tmpl
var scriptTemplates embed.FS

// NewScriptData holds the values rendered into a new script file.
type NewScriptData struct {
	Name        string
	Version     string
	Description string
	Author      string
	Created     string
}

var newScript = template.Must(template.ParseFS(scriptTemplates, "script/new.sql.tmpl"))

// RenderNewScript returns the initial content of a new script file.
func RenderNewScript(data NewScriptData) (string, error) {
	var buf bytes.Buffer
	if err := newScript.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render script template: %w", err)
	}
	return buf.String(), nil
}
