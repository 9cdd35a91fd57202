package config

import (
	"errors"
	"fmt"

	"github.com/ironsheep/template-cloner/internal/cloner"
	"github.com/ironsheep/template-cloner/internal/imaging"
	"github.com/ironsheep/template-cloner/internal/locate"
	"github.com/ironsheep/template-cloner/internal/logging"
)

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Matching MatchingConfig `mapstructure:"matching" yaml:"matching"`
	Cloning  CloningConfig  `mapstructure:"cloning" yaml:"cloning"`
}

// LogConfig selects the logger level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MatchingConfig tunes segment localization.
type MatchingConfig struct {
	// Threshold is the minimum correlation score for a segment to count as
	// found.
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold"`
	Method     string  `mapstructure:"method" yaml:"method"`
	Channel    string  `mapstructure:"channel" yaml:"channel"`
	Downscale  int     `mapstructure:"downscale" yaml:"downscale"`
	Candidates int     `mapstructure:"candidates" yaml:"candidates"`
}

// CloningConfig mirrors cloner.Options.
type CloningConfig struct {
	AnchorThreshold    float64 `mapstructure:"anchor_threshold" yaml:"anchor_threshold"`
	GroupThreshold     float64 `mapstructure:"group_threshold" yaml:"group_threshold"`
	FieldThreshold     float64 `mapstructure:"field_threshold" yaml:"field_threshold"`
	EdgeAlignThreshold float64 `mapstructure:"edge_align_threshold" yaml:"edge_align_threshold"`
	EdgeTolerance      float64 `mapstructure:"edge_tolerance" yaml:"edge_tolerance"`
	EdgeSlack          float64 `mapstructure:"edge_slack" yaml:"edge_slack"`
	MergeDistance      float64 `mapstructure:"merge_distance" yaml:"merge_distance"`
	Workers            int     `mapstructure:"workers" yaml:"workers"`
	OnAmbiguity        string  `mapstructure:"on_ambiguity" yaml:"on_ambiguity"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	m := imaging.NewMatcher()
	o := cloner.DefaultOptions()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Matching: MatchingConfig{
			Threshold:  locate.DefaultThreshold,
			Method:     string(m.Method),
			Channel:    string(m.Channel),
			Downscale:  m.Downscale,
			Candidates: m.Candidates,
		},
		Cloning: CloningConfig{
			AnchorThreshold:    o.AnchorThreshold,
			GroupThreshold:     o.GroupThreshold,
			FieldThreshold:     o.FieldThreshold,
			EdgeAlignThreshold: o.EdgeAlignThreshold,
			EdgeTolerance:      o.EdgeTolerance,
			EdgeSlack:          o.EdgeSlack,
			MergeDistance:      o.MergeDistance,
			Workers:            o.Workers,
			OnAmbiguity:        string(o.OnAmbiguity),
		},
	}
}

// Matcher builds the correlation matcher.
func (c *Config) Matcher() *imaging.Matcher {
	return &imaging.Matcher{
		Method:     imaging.Method(c.Matching.Method),
		Channel:    imaging.Channel(c.Matching.Channel),
		Downscale:  c.Matching.Downscale,
		Candidates: c.Matching.Candidates,
	}
}

// Locator builds a segment locator around Matcher.
func (c *Config) Locator() *locate.Locator {
	return locate.New(c.Matcher(), c.Matching.Threshold)
}

// ClonerOptions converts the cloning section.
func (c *Config) ClonerOptions() cloner.Options {
	return cloner.Options{
		AnchorThreshold:    c.Cloning.AnchorThreshold,
		GroupThreshold:     c.Cloning.GroupThreshold,
		FieldThreshold:     c.Cloning.FieldThreshold,
		EdgeAlignThreshold: c.Cloning.EdgeAlignThreshold,
		EdgeTolerance:      c.Cloning.EdgeTolerance,
		EdgeSlack:          c.Cloning.EdgeSlack,
		MergeDistance:      c.Cloning.MergeDistance,
		Workers:            c.Cloning.Workers,
		OnAmbiguity:        cloner.Policy(c.Cloning.OnAmbiguity),
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		errs = append(errs, fmt.Errorf("matching.threshold must be in (0,1], got %v", c.Matching.Threshold))
	}
	if err := c.Matcher().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("matching: %w", err))
	}
	if err := c.ClonerOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cloning: %w", err))
	}
	return errors.Join(errs...)
}
