package labels

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/template-cloner/internal/cloner"
)

// Format is a report encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Report is the output of one cloning run: the target's labels plus run
// metadata.
type Report struct {
	RunID         string `json:"run_id" yaml:"run_id"`
	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
	Target        string `json:"target,omitempty" yaml:"target,omitempty"`
	cloner.Labels `yaml:",inline"`
	Skipped       []cloner.Skip `json:"skipped" yaml:"skipped"`
}

// NewReport builds a report for res.
func NewReport(res *cloner.Result, source, target string) *Report {
	skipped := res.Skipped
	if skipped == nil {
		skipped = []cloner.Skip{}
	}
	return &Report{
		RunID:   res.RunID,
		Source:  source,
		Target:  target,
		Labels:  res.Labels,
		Skipped: skipped,
	}
}

// Document returns the report's labels as a label document for the target
// image, so a cloned result can seed the next run.
func (r *Report) Document() *Document {
	return &Document{Image: r.Target, Labels: r.Labels}
}

// Write encodes the report in the given format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}
