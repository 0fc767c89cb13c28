package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pscheid92/wincounter/internal/jsonmerge"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func writeRecord(w io.Writer, state jsonmerge.Value, format string) error {
	switch strings.ToLower(format) {
	case formatJSON:
		raw, err := state.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format record: %w", err)
		}
		buf.WriteByte('\n')
		if _, err := buf.WriteTo(w); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		return nil

	case formatYAML:
		node, err := yamlNode(state)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported format %q (use %s or %s)", format, formatJSON, formatYAML)
	}
}

// yamlNode converts a record to a YAML node tree, keeping object key order.
func yamlNode(v jsonmerge.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case jsonmerge.KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range v.Keys() {
			child, err := yamlNode(v.Get(key))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		return node, nil

	case jsonmerge.KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			child, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case jsonmerge.KindString:
		s, _ := v.Str()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}, nil

	case jsonmerge.KindBool:
		b, _ := v.BoolVal()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(b)}, nil

	case jsonmerge.KindNumber:
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode number: %w", err)
		}
		tag := "!!float"
		if !bytes.ContainsAny(raw, ".eE") {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(raw)}, nil

	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
}
