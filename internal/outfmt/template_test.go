package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWithTemplate(t *testing.T) {
	ctx := WithTemplate(context.Background(), "{{.name}}")
	if GetTemplate(ctx) != "{{.name}}" {
		t.Error("GetTemplate should return the template set with WithTemplate")
	}
	if GetTemplate(context.Background()) != "" {
		t.Error("GetTemplate should return empty string by default")
	}
}

func TestWriteTemplate(t *testing.T) {
	tests := []struct {
		name string
		data any
		tmpl string
		want string
	}{
		{"json field names", sampleTemplate{ID: 7, Name: "Alpha", ShortName: "alpha"}, "{{.id}}: {{.short_name}}", "7: alpha"},
		{"missing key", map[string]string{"name": "x"}, "[{{.nope}}]", "[<no value>]"},
		{"upper", map[string]string{"name": "alpha"}, "{{upper .name}}", "ALPHA"},
		{"join", map[string]any{"ids": []int{1, 2, 3}}, `{{join "," .ids}}`, "1,2,3"},
		{"json func", map[string]any{"a": 1}, "{{json .}}", "{\n  \"a\": 1\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteTemplate(&buf, tt.data, tt.tmpl); err != nil {
				t.Fatalf("WriteTemplate() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("WriteTemplate() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteTemplate_ParseError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTemplate(&buf, map[string]string{}, "{{.name")
	if err == nil || !strings.Contains(err.Error(), "invalid template") {
		t.Fatalf("expected invalid template error, got %v", err)
	}
}
