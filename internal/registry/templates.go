package registry

import (
	"embed"
	"fmt"
)

//go:embed templates
var templateFS embed.FS

// Template returns the raw contents of a named content template.
func Template(name string) ([]byte, error) {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("template %q not found: %w", name, err)
	}
	return data, nil
}

// BlockBegin returns the well-known begin marker line for a managed block.
func BlockBegin(id string) string { return "# >>> stackforge:" + id + " >>>" }

// BlockEnd returns the well-known end marker line for a managed block.
func BlockEnd(id string) string { return "# <<< stackforge:" + id + " <<<" }
