package types

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/rmlint/internal/rewrite"
)

// Severity is the level an issue is reported at.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity accepts the names used in configuration files.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "off", "disabled":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

// MarshalText lets YAML, TOML and JSON encode severities by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Issue represents a lint issue found in the code base.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Severity   Severity
	// Corrections is the proposed fix, empty when the rule could not build one.
	Corrections []rewrite.Correction `json:",omitempty"`
	// FixError explains why no correction is attached.
	FixError string `json:",omitempty"`
}

// Fixable reports whether the issue carries a correction.
func (i Issue) Fixable() bool {
	return len(i.Corrections) > 0
}

// ConfigRule is the per-rule section of a configuration file.
type ConfigRule struct {
	Severity Severity `yaml:"severity" toml:"severity" json:"severity"`
	// Methods overrides the rule's list of offending method names.
	Methods []string `yaml:"methods,omitempty" toml:"methods,omitempty" json:"methods,omitempty"`
}
