package config

import (
	"fmt"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// MapOption controls source map generation. In yaml it is either boolean or
// prefix string: maps are written as <Prefix><input name>.map when prefix is
// set and next to the output as <output>.map otherwise.
type MapOption struct {
	Enabled bool
	Prefix  string
}

// DiffOption controls diff generation. In yaml it is either boolean or path
// of the diff file. When path is empty diff goes to <output>.patch.
type DiffOption struct {
	Enabled bool
	Path    string
}

// ParseMapOption interprets command line value of map option.
func ParseMapOption(s string) MapOption {
	enabled, value := parseBoolOrString(s)
	return MapOption{Enabled: enabled, Prefix: value}
}

// ParseDiffOption interprets command line value of diff option.
func ParseDiffOption(s string) DiffOption {
	enabled, value := parseBoolOrString(s)
	return DiffOption{Enabled: enabled, Path: value}
}

func (o MapOption) String() string {
	return formatBoolOrString(o.Enabled, o.Prefix)
}

func (o DiffOption) String() string {
	return formatBoolOrString(o.Enabled, o.Path)
}

func (o *MapOption) UnmarshalYAML(value *yaml.Node) error {
	enabled, s, err := decodeBoolOrString(value)
	if err != nil {
		return err
	}
	*o = MapOption{Enabled: enabled, Prefix: s}
	return nil
}

func (o MapOption) MarshalYAML() (any, error) {
	return marshalBoolOrString(o.Enabled, o.Prefix), nil
}

func (o *DiffOption) UnmarshalYAML(value *yaml.Node) error {
	enabled, s, err := decodeBoolOrString(value)
	if err != nil {
		return err
	}
	*o = DiffOption{Enabled: enabled, Path: s}
	return nil
}

func (o DiffOption) MarshalYAML() (any, error) {
	return marshalBoolOrString(o.Enabled, o.Path), nil
}

func decodeBoolOrString(value *yaml.Node) (bool, string, error) {
	if value.Kind != yaml.ScalarNode {
		return false, "", fmt.Errorf("line %d: expected boolean or string", value.Line)
	}
	if value.Tag == "!!bool" {
		var b bool
		if err := value.Decode(&b); err != nil {
			return false, "", err
		}
		return b, "", nil
	}
	if value.Tag == "!!null" || value.Value == "" {
		return false, "", nil
	}
	return true, value.Value, nil
}

func marshalBoolOrString(enabled bool, s string) any {
	if !enabled {
		return false
	}
	if s == "" {
		return true
	}
	return s
}

func parseBoolOrString(s string) (bool, string) {
	if s == "" {
		return false, ""
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, ""
	}
	return true, s
}

func formatBoolOrString(enabled bool, s string) string {
	if !enabled {
		return "false"
	}
	if s == "" {
		return "true"
	}
	return s
}
