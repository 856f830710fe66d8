package urlsource

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadFormats(t *testing.T) {
	tests := []struct {
		name  string
		opt   Options
		input string
		want  []string
	}{
		{
			name:  "text with comments and blanks",
			opt:   Options{Format: FormatText},
			input: "# targets\nhttp://a\n\n  http://b  \nhttp://a\n",
			want:  []string{"http://a", "http://b", "http://a"},
		},
		{
			name:  "csv default column",
			opt:   Options{Format: FormatCSV},
			input: "name,URL\nfirst,http://a\nsecond,http://b\n",
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "csv named column",
			opt:   Options{Format: FormatCSV, CSVColumn: "target"},
			input: "target,weight\nhttp://a,1\nhttp://b,2\n",
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "csv exported results",
			opt:   Options{Format: FormatCSV},
			input: "\ufeffURL,状态码/错误,响应时间(ms)\r\nhttp://a,200,1.5\r\nhttp://b,timeout: x,0\r\n",
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "json root array",
			opt:   Options{Format: FormatJSON},
			input: `["http://a", "http://b"]`,
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "json objects via path",
			opt:   Options{Format: FormatJSON, JSONPath: "$.targets"},
			input: `{"targets":[{"url":"http://a"},{"url":"http://b","tags":["x"]}]}`,
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "json gjson query",
			opt:   Options{Format: FormatJSON, JSONPath: "services.#.health"},
			input: `{"services":[{"health":"http://a/health"},{"health":"http://b/health"}]}`,
			want:  []string{"http://a/health", "http://b/health"},
		},
		{
			name:  "json single string",
			opt:   Options{Format: FormatJSON, JSONPath: "primary"},
			input: `{"primary":"http://a"}`,
			want:  []string{"http://a"},
		},
		{
			name:  "yaml list",
			opt:   Options{Format: FormatYAML},
			input: "- http://a\n- http://b\n",
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "yaml mapping",
			opt:   Options{Format: FormatYAML},
			input: "urls:\n  - url: http://a\n  - http://b\n",
			want:  []string{"http://a", "http://b"},
		},
		{
			name:  "empty yaml",
			opt:   Options{Format: FormatYAML},
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.opt)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		opt   Options
		input string
		want  string
	}{
		{"csv empty", Options{Format: FormatCSV}, "", "empty"},
		{"csv missing column", Options{Format: FormatCSV}, "name\nx\n", `no "url" column`},
		{"csv short row", Options{Format: FormatCSV, CSVColumn: "b"}, "a,b\n1\n", "row 2"},
		{"json invalid", Options{Format: FormatJSON}, `[`, "invalid"},
		{"json missing path", Options{Format: FormatJSON, JSONPath: "nope"}, `{}`, "not found"},
		{"json wrong item", Options{Format: FormatJSON}, `[1]`, "item 0"},
		{"yaml scalar", Options{Format: FormatYAML}, "hello", "list of URLs"},
		{"yaml mapping without urls", Options{Format: FormatYAML}, "targets: []", `no "urls" key`},
		{"yaml object without url", Options{Format: FormatYAML}, "- name: x", "item 0"},
		{"unknown format", Options{Format: "xml"}, "", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.opt)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadDetectsFormat(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"urls.txt", "http://a\nhttp://b\n"},
		{"urls.csv", "url\nhttp://a\nhttp://b\n"},
		{"urls.json", `["http://a","http://b"]`},
		{"urls.yml", "- http://a\n- http://b\n"},
		{"urls", "http://a\nhttp://b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content), Options{})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if want := []string{"http://a", "http://b"}; !reflect.DeepEqual(got, want) {
				t.Fatalf("got %q, want %q", got, want)
			}
		})
	}
}

func TestLoadExplicitFormatOverridesExtension(t *testing.T) {
	path := writeFile(t, "targets.txt", `["http://a"]`)
	got, err := Load(path, Options{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"http://a"}) {
		t.Fatalf("got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.txt"), Options{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "TEXT": FormatText, "txt": FormatText, "csv": FormatCSV, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
