package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned by Get and Set for keys that are not part of the
// configuration schema.
var ErrUnknownKey = errors.New("unknown config key")

// Get returns the value at a dotted key such as "gallery.rows".
func (c *Config) Get(key string) (any, error) {
	tree, err := c.toTree()
	if err != nil {
		return nil, err
	}

	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	return cur, nil
}

// Set parses value as YAML and stores it at a dotted key. Only existing
// leaf keys can be set, and the value must fit the field's type.
func (c *Config) Set(key, value string) error {
	tree, err := c.toTree()
	if err != nil {
		return err
	}

	parts := strings.Split(key, ".")
	parent := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := parent[part].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		parent = next
	}

	leaf := parts[len(parts)-1]
	old, ok := parent[leaf]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if _, isMap := old.(map[string]any); isMap {
		return fmt.Errorf("%w: %s is a section, not a value", ErrUnknownKey, key)
	}

	var parsed any
	if err = yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return fmt.Errorf("parsing value for %s: %w", key, err)
	}
	parent[leaf] = parsed

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	updated := *c
	if err = yaml.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*c = updated
	return nil
}

// Keys lists every settable dotted key in sorted order.
func (c *Config) Keys() []string {
	tree, err := c.toTree()
	if err != nil {
		return nil
	}
	var keys []string
	collectKeys("", tree, &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(prefix string, m map[string]any, keys *[]string) {
	for k, v := range m {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			collectKeys(full, sub, keys)
			continue
		}
		*keys = append(*keys, full)
	}
}

func (c *Config) toTree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	var tree map[string]any
	if err = yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return tree, nil
}
