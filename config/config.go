// Package config provides YAML configuration parsing for wastlwatch.
//
// This package enables running wastlwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Feuerwehr Niederösterreich
//	port: 8080
//	update_interval: 60
//	region: lower_austria
//
//	pages:
//	  - name: Bezirk Krems
//	    url: https://example.org/Bezirk_EinsatzAktuell.asp
//	    type: incidents
//	    timeout: 10s
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/wastlwatch"
)

// Update interval bounds, in minutes.
const (
	DefaultUpdateInterval = 60
	MinUpdateInterval     = 15
	MaxUpdateInterval     = 600
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "WASTL Watch" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// UpdateInterval is the time between polling cycles in minutes.
	// Must be between 15 and 600. Defaults to 60.
	UpdateInterval int `yaml:"update_interval"`

	// MaxConcurrency bounds parallel page fetches. Zero means the SDK default.
	MaxConcurrency int `yaml:"max_concurrency"`

	// Region selects a predefined set of pages from the catalog, see
	// [Regions]. Optional.
	Region string `yaml:"region"`

	// Pages are additional pages, polled after the region's pages.
	Pages []PageConfig `yaml:"pages"`
}

// PageConfig defines a single dispatch page.
type PageConfig struct {
	// Name is the display name shown in the dashboard.
	Name string `yaml:"name"`

	// URL is the page URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Type is the row layout: "incidents" or "departments".
	Type wastlwatch.PageType `yaml:"type"`

	// Timeout is the fetch timeout. Defaults to 15s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Interval returns the update interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.UpdateInterval) * time.Minute
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// A leading "~" in path is expanded to the user's home directory.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in page URLs and header values.
// Defaults are applied for Port (8080) and UpdateInterval (60 minutes).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.UpdateInterval == 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.UpdateInterval < MinUpdateInterval || c.UpdateInterval > MaxUpdateInterval {
		return fmt.Errorf("update_interval must be between %d and %d minutes, got %d",
			MinUpdateInterval, MaxUpdateInterval, c.UpdateInterval)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", c.MaxConcurrency)
	}

	regionPages := 0
	if c.Region != "" {
		region, ok := LookupRegion(c.Region)
		if !ok {
			return fmt.Errorf("unknown region %q", c.Region)
		}
		regionPages = len(region.Pages)
	}

	for i := range c.Pages {
		p := &c.Pages[i]

		if p.Name == "" {
			return fmt.Errorf("pages[%d]: name is required", i)
		}

		if p.URL == "" {
			return fmt.Errorf("pages[%d] (%s): url is required", i, p.Name)
		}
		expanded, err := expandEnvVars(p.URL)
		if err != nil {
			return fmt.Errorf("pages[%d] (%s): url: %w", i, p.Name, err)
		}
		p.URL = expanded

		parsedURL, err := url.Parse(p.URL)
		if err != nil {
			return fmt.Errorf("pages[%d] (%s): invalid url: %w", i, p.Name, err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("pages[%d] (%s): url scheme must be http or https, got %q", i, p.Name, parsedURL.Scheme)
		}

		if p.Type == "" {
			return fmt.Errorf("pages[%d] (%s): type is required", i, p.Name)
		}

		for k, v := range p.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("pages[%d] (%s): headers[%s]: %w", i, p.Name, k, err)
			}
			p.Headers[k] = expanded
		}

		if p.Timeout != 0 && p.Timeout.Duration() < time.Second {
			return fmt.Errorf("pages[%d] (%s): timeout must be at least 1s if specified, got %s",
				i, p.Name, p.Timeout.Duration())
		}
	}

	if regionPages+len(c.Pages) == 0 {
		if c.Region != "" {
			return fmt.Errorf("region %q has no pages; add pages to the config", c.Region)
		}
		return errors.New("a region or at least one page must be defined")
	}

	return nil
}
