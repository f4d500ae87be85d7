package cli

import (
	"io"

	"gopkg.in/yaml.v3"
)

// render writes data in the selected output format. table is called for the
// human format and writes whatever layout suits the command.
func render(w io.Writer, data interface{}, table func(w io.Writer) error) error {
	switch outputFormat() {
	case "json":
		return WriteJSONSuccess(w, data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return table(w)
	}
}

// writeString adapts a rendered string to render's table callback.
func writeString(s string) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}
