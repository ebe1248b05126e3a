package config

import (
	"bytes"
	"strconv"
	"time"

	"github.com/rileyhilliard/pvdash/internal/errors"
	"gopkg.in/yaml.v3"
)

// durationKeys are the YAML keys holding time.Duration values.
var durationKeys = map[string]bool{
	"idle_after":      true,
	"normal_interval": true,
	"slow_interval":   true,
	"timeout":         true,
}

// Marshal encodes cfg as YAML. Durations are written as "2s" rather than
// nanosecond integers so the file stays hand-editable.
func Marshal(cfg *Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"")
	}
	humanizeDurations(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"")
	}
	return buf.Bytes(), nil
}

func humanizeDurations(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if durationKeys[key.Value] && val.Kind == yaml.ScalarNode && val.Tag == "!!int" {
				if ns, err := strconv.ParseInt(val.Value, 10, 64); err == nil {
					val.SetString(time.Duration(ns).String())
				}
			}
		}
	}
	for _, c := range n.Content {
		humanizeDurations(c)
	}
}
