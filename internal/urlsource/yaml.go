package urlsource

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func readYAML(r io.Reader) ([]string, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode YAML: %w", err)
	}

	if m, ok := doc.(map[string]any); ok {
		list, found := m["urls"]
		if !found {
			return nil, fmt.Errorf("YAML mapping has no \"urls\" key")
		}
		doc = list
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("YAML document must be a list of URLs")
	}

	urls := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			urls = append(urls, v)
		case map[string]any:
			u, ok := v["url"].(string)
			if !ok {
				return nil, fmt.Errorf("item %d: missing string \"url\" field", i)
			}
			urls = append(urls, u)
		default:
			return nil, fmt.Errorf("item %d: expected a string or a mapping with \"url\"", i)
		}
	}
	return urls, nil
}
