package urlsource

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

func readJSON(r io.Reader, path string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode JSON: invalid document")
	}

	path = normalizeJSONPath(path)
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return nil, fmt.Errorf("JSON path %q not found", path)
	}

	if !result.IsArray() {
		u, err := jsonURL(result)
		if err != nil {
			return nil, err
		}
		return []string{u}, nil
	}

	items := result.Array()
	urls := make([]string, 0, len(items))
	for i, item := range items {
		u, err := jsonURL(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// normalizeJSONPath accepts gjson paths as well as $.field and bare $.
func normalizeJSONPath(path string) string {
	switch {
	case path == "" || path == "$":
		return "@this"
	case len(path) > 1 && path[0] == '$' && path[1] == '.':
		return path[2:]
	default:
		return path
	}
}

func jsonURL(v gjson.Result) (string, error) {
	switch {
	case v.Type == gjson.String:
		return v.String(), nil
	case v.IsObject():
		if u := v.Get("url"); u.Type == gjson.String {
			return u.String(), nil
		}
		return "", fmt.Errorf("object has no string \"url\" field")
	default:
		return "", fmt.Errorf("expected a string or an object with \"url\", got %s", v.Type)
	}
}
