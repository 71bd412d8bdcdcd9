// Package web holds the server-rendered templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates
var templateFS embed.FS

// Templates parses all embedded templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*/*.html")
}
