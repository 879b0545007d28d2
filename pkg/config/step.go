package config

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stripweave/pkg/errors"
)

// Step is a strip size that decodes from either an integer or a string
// holding one, so both step: 8 and step: "8" are accepted.
type Step int

// ParseStep converts s to a Step. Surrounding space is ignored; signs are
// accepted so that range checks report negative values rather than a parse
// error.
func ParseStep(s string) (Step, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidConfiguration, "step %q is not a valid integer", s)
	}
	return Step(n), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"step must be an integer (line %d)", node.Line)
	}
	v, err := ParseStep(node.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (s *Step) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case int64:
		*s = Step(v)
		return nil
	case string:
		parsed, err := ParseStep(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration, "step %v is not a valid integer", data)
	}
}
