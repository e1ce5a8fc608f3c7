package request

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"apicase/internal/directive"
	"apicase/internal/execution"
	"apicase/internal/extension"
	"apicase/internal/repository"
	"apicase/internal/value"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T, files map[string]string) *Builder {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}

	reg := extension.NewRegistry()
	reg.Register("Orders", "total", func(_ context.Context, _ extension.Call) (string, error) {
		return "99", nil
	})
	return NewBuilder(value.NewResolver(reg), repository.New(fsys, "templates"))
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		token   string
		want    Method
		wantErr bool
	}{
		{token: "GET", want: Method{Verb: http.MethodGet}},
		{token: "patch", want: Method{Verb: http.MethodPatch}},
		{token: "RELAX_POST", want: Method{Verb: http.MethodPost, Relaxed: true}},
		{token: "relax_delete", want: Method{Verb: http.MethodDelete, Relaxed: true}},
		{token: "RELAX_PATCH", wantErr: true},
		{token: "HEAD", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseMethod(tt.token)
			if tt.wantErr {
				var merr *UnsupportedMethodError
				require.ErrorAs(t, err, &merr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_Merge(t *testing.T) {
	b := newBuilder(t, nil)
	ec := execution.New("t")

	got, err := b.Merge(context.Background(), ec, "body",
		[]string{"name", "NONE", "", "active", "total", "note", "missing"},
		[]any{"alice", "x", "y", "TRUE", "Custom:Orders:total", "Custom", nil})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":    "alice",
		"active":  true,
		"total":   "99",
		"note":    "Custom",
		"missing": nil,
	}, got)
}

func TestBuilder_MergeTooFewValues(t *testing.T) {
	b := newBuilder(t, nil)
	_, err := b.Merge(context.Background(), execution.New("t"), "headers", []string{"a", "b"}, []any{"1"})

	var merr *MergeError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "HEADERS", merr.Step)
}

func TestBuilder_MergeCustomWithoutMethod(t *testing.T) {
	b := newBuilder(t, nil)
	_, err := b.Merge(context.Background(), execution.New("t"), "body", []string{"a"}, []any{"Custom:Orders"})

	var verr *value.ValueResolutionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "BODY", verr.Step)
}

func TestBuilder_Build(t *testing.T) {
	b := newBuilder(t, nil)
	spec := &directive.TestCaseSpec{
		Endpoint:     "http://api.local/users",
		Method:       "post",
		ParamKeys:    []string{"NONE"},
		ParamValues:  []any{"x"},
		HeaderKeys:   []string{"X-Trace"},
		HeaderValues: []any{"abc"},
		BodyKeys:     []string{"name"},
		BodyValues:   []any{"alice"},
	}

	p, err := b.Build(context.Background(), execution.New("t"), spec)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local/users", p.Endpoint)
	assert.Equal(t, Method{Verb: http.MethodPost}, p.Method)
	assert.Nil(t, p.Params)
	assert.Nil(t, p.Auth)
	assert.Equal(t, map[string]any{"X-Trace": "abc"}, p.Headers)
	assert.Equal(t, map[string]any{"name": "alice"}, p.Body)
}

func TestBuilder_BuildUnsupportedMethod(t *testing.T) {
	_, err := newBuilder(t, nil).Build(context.Background(), execution.New("t"), &directive.TestCaseSpec{Method: "FETCH"})
	var merr *UnsupportedMethodError
	assert.ErrorAs(t, err, &merr)
}

func TestBuilder_Template(t *testing.T) {
	files := map[string]string{
		"templates/users/create_user.json": `{"name":"{{name}}","age":{{age}},"active":{{active}},"tags":["{{tag}}"]}`,
		"templates/broken.json":            `{"name":{{name}}`,
		"templates/list.json":              `[1,2]`,
	}

	t.Run("renders and parses", func(t *testing.T) {
		b := newBuilder(t, files)
		spec := &directive.TestCaseSpec{
			Method:     "POST",
			BodyKeys:   []string{"JsonRepository", "name", "age", "active"},
			BodyValues: []any{"create_user", "bob", "41", "true"},
		}

		p, err := b.Build(context.Background(), execution.New("t"), spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"name":   "bob",
			"age":    41,
			"active": true,
			"tags":   []any{"{{tag}}"},
		}, p.Body)
	})

	tests := []struct {
		name   string
		tmpl   string
		assert func(t *testing.T, err error)
	}{
		{
			name: "missing file",
			tmpl: "nope",
			assert: func(t *testing.T, err error) {
				var nf *TemplateFileNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "nope", nf.Name)
			},
		},
		{
			name: "invalid json",
			tmpl: "broken",
			assert: func(t *testing.T, err error) {
				var pe *TemplateParseError
				require.ErrorAs(t, err, &pe)
			},
		},
		{
			name: "not an object",
			tmpl: "list",
			assert: func(t *testing.T, err error) {
				var pe *TemplateParseError
				require.ErrorAs(t, err, &pe)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, files)
			spec := &directive.TestCaseSpec{
				Method:     "POST",
				BodyKeys:   []string{"JsonRepository", "name"},
				BodyValues: []any{tt.tmpl, "x"},
			}
			_, err := b.Build(context.Background(), execution.New("t"), spec)
			tt.assert(t, err)
		})
	}
}

func TestParameters_NewHTTPRequest(t *testing.T) {
	t.Run("json body with bearer auth", func(t *testing.T) {
		p := &Parameters{
			Endpoint: "http://api.local/users?x=1",
			Method:   Method{Verb: http.MethodPost},
			Params:   map[string]any{"page": 2},
			Body:     map[string]any{"name": "alice", "admin": false},
			Auth:     map[string]any{"Bearer": "tok", "Basic": "ignored"},
		}

		req, err := p.NewHTTPRequest(context.Background())
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "1", req.URL.Query().Get("x"))
		assert.Equal(t, "2", req.URL.Query().Get("page"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"alice","admin":false}`, string(body))
	})

	t.Run("form body", func(t *testing.T) {
		p := &Parameters{
			Endpoint: "http://api.local/login",
			Method:   Method{Verb: http.MethodPost},
			Headers:  map[string]any{"content-type": "application/x-www-form-urlencoded; charset=utf-8"},
			Body:     map[string]any{"user": "a b", "remember": true},
		}
		require.True(t, p.IsForm())

		req, err := p.NewHTTPRequest(context.Background())
		require.NoError(t, err)

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "a b", form.Get("user"))
		assert.Equal(t, "true", form.Get("remember"))
		assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8", req.Header.Get("Content-Type"))
	})

	t.Run("no body", func(t *testing.T) {
		p := &Parameters{Endpoint: "http://api.local", Method: Method{Verb: http.MethodGet}}
		req, err := p.NewHTTPRequest(context.Background())
		require.NoError(t, err)
		assert.Empty(t, req.Header.Get("Content-Type"))
		assert.Nil(t, req.Body)
	})
}
