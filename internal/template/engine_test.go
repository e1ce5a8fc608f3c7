package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_Render(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		values map[string]any
		want   string
	}{
		{
			name:   "string and spaced placeholder",
			text:   `{"name":"{{name}}","city":"{{ city }}"}`,
			values: map[string]any{"name": "alice", "city": "Pune"},
			want:   `{"name":"alice","city":"Pune"}`,
		},
		{
			name:   "typed values",
			text:   `{"active":{{active}},"age":{{age}}}`,
			values: map[string]any{"active": true, "age": 30},
			want:   `{"active":true,"age":30}`,
		},
		{
			name:   "unknown placeholder kept",
			text:   `{"a":"{{a}}","b":"{{b}}"}`,
			values: map[string]any{"a": "x"},
			want:   `{"a":"x","b":"{{b}}"}`,
		},
		{
			name:   "repeated placeholder",
			text:   `{{id}}-{{id}}`,
			values: map[string]any{"id": "7"},
			want:   `7-7`,
		},
		{
			name:   "nil value",
			text:   `{"v":{{v}}}`,
			values: map[string]any{"v": nil},
			want:   `{"v":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.text, tt.values))
		})
	}
}

func TestEngine_Placeholders(t *testing.T) {
	e := New()
	text := `{"b":"{{b}}","a":"{{ a }}","again":"{{b}}"}`

	assert.Equal(t, []string{"a", "b"}, e.Placeholders(text))
	assert.Equal(t, []string{"b"}, e.Missing(text, map[string]any{"a": 1}))
	assert.Empty(t, e.Missing(text, map[string]any{"a": 1, "b": 2}))
}
