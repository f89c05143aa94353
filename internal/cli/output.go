package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Print writes data in the configured format. In text format strings and
// fmt.Stringers are printed as is, everything else as indented JSON.
func (f *OutputFormatter) Print(data any) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}

	switch data := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.Writer, data.String())
		return err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f.Writer, "%s\n", raw)
	return err
}

// Done reports a successful mutation in text format and stays silent
// otherwise, so that JSON and YAML output remains parseable.
func (f *OutputFormatter) Done(format string, args ...any) {
	if f.Format == "text" {
		fmt.Fprintf(f.Writer, format+"\n", args...)
	}
}
