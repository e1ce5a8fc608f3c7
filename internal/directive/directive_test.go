package directive

import (
	"context"
	"errors"
	"testing"

	"apicase/internal/execution"
	"apicase/internal/extension"
	"apicase/internal/value"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeRunner struct {
	calls []string
	err   error
	store map[string]any
}

func (f *fakeRunner) RunDependency(_ context.Context, name string, ec *execution.Context) error {
	f.calls = append(f.calls, name)
	for k, v := range f.store {
		ec.Store(k, v)
	}
	return f.err
}

func newParser(deps DependencyRunner) *Parser {
	reg := extension.NewRegistry()
	reg.Register("MOCK", "FIXED", func(_ context.Context, call extension.Call) (string, error) {
		return " fixed-" + call.Arg + " ", nil
	})
	return NewParser(value.NewResolver(reg), deps)
}

func TestParser_Parse(t *testing.T) {
	ec := execution.New("TC001")
	ec.Store("host", "http://api.local")

	rows := []Row{
		{"END_POINT", "ApiGlobalVariables:host"},
		{"METHOD", " POST "},
		{"HEADERS:KEY", "Content-Type", "X-Request"},
		{"HEADERS:VALUE", "application/json", "PreFlow:MOCK:FIXED:a"},
		{"BODY:KEY", "name"},
		{"BODY:VALUE", "alice"},
		{"RESPONSE:JSON_PATH", "status", "id"},
		{"RESPONSE:EXPECTED_VALUE", "created:5", "NONE"},
		{"RESPONSE:STORE_VALUE", "NONE", "userId"},
		{"RESPONSE:CODE", "201"},
		{"RESPONSE:SCHEMA", "user_schema"},
		{"SOMETHING_ELSE", "ignored"},
	}

	spec, err := newParser(nil).Parse(context.Background(), ec, rows)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local", spec.Endpoint)
	assert.Equal(t, "POST", spec.Method)
	assert.Equal(t, []string{"Content-Type", "X-Request"}, spec.HeaderKeys)
	assert.Equal(t, []any{"application/json", "fixed-a"}, spec.HeaderValues)
	assert.Equal(t, []any{"alice"}, spec.BodyValues)
	assert.Equal(t, []string{"status", "id"}, spec.JSONPaths)
	assert.Equal(t, []any{"created:5", "NONE"}, spec.ExpectedValues)
	assert.Equal(t, []any{"NONE", "userId"}, spec.StoreKeys)
	assert.Equal(t, "201", spec.ResponseCode)
	assert.Equal(t, "user_schema", spec.Schema)
	assert.Nil(t, spec.ParamKeys)
	assert.Empty(t, spec.Dependencies)
}

func TestParser_RepeatedKeywordReplaces(t *testing.T) {
	rows := []Row{
		{"PARAMS:KEY", "a", "b"},
		{"PARAMS:VALUE", "1", "2"},
		{"PARAMS:KEY", "c"},
		{"PARAMS:VALUE", "3"},
	}

	spec, err := newParser(nil).Parse(context.Background(), execution.New("t"), rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, spec.ParamKeys)
	assert.Equal(t, []any{"3"}, spec.ParamValues)
}

func TestParser_ArityMismatch(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		keyword Keyword
	}{
		{
			name:    "headers",
			rows:    []Row{{"HEADERS:KEY", "a", "b"}, {"HEADERS:VALUE", "1"}},
			keyword: HeadersKey,
		},
		{
			name:    "expected values",
			rows:    []Row{{"RESPONSE:JSON_PATH", "a"}, {"RESPONSE:EXPECTED_VALUE", "1", "2"}},
			keyword: ResponseJSONPath,
		},
		{
			name:    "store values",
			rows:    []Row{{"RESPONSE:STORE_VALUE", "x", "y"}, {"RESPONSE:JSON_PATH", "a"}},
			keyword: ResponseStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newParser(nil).Parse(context.Background(), execution.New("t"), tt.rows)
			var perr *DirectiveParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.keyword, perr.Keyword)
		})
	}
}

func TestParser_KeysWithoutValuesAreNotAnError(t *testing.T) {
	spec, err := newParser(nil).Parse(context.Background(), execution.New("t"), []Row{{"HEADERS:KEY", "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, spec.HeaderKeys)
	assert.Nil(t, spec.HeaderValues)
}

func TestParser_Dependencies(t *testing.T) {
	t.Run("runs before later rows and shares the context", func(t *testing.T) {
		runner := &fakeRunner{store: map[string]any{"token": "abc"}}
		rows := []Row{
			{"DEPENDANT_TEST_CASE", "TC000"},
			{"AUTH:KEY", "Bearer"},
			{"AUTH:VALUE", "ApiGlobalVariables:token"},
		}

		spec, err := newParser(runner).Parse(context.Background(), execution.New("TC001"), rows)
		require.NoError(t, err)
		assert.Equal(t, []string{"TC000"}, runner.calls)
		assert.Equal(t, []string{"TC000"}, spec.Dependencies)
		assert.Equal(t, []any{"abc"}, spec.AuthValues)
	})

	t.Run("NONE is skipped", func(t *testing.T) {
		runner := &fakeRunner{}
		spec, err := newParser(runner).Parse(context.Background(), execution.New("t"), []Row{{"DEPENDANT_TEST_CASE", "NONE"}})
		require.NoError(t, err)
		assert.Empty(t, runner.calls)
		assert.Empty(t, spec.Dependencies)
	})

	t.Run("failure aborts parsing", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("boom")}
		_, err := newParser(runner).Parse(context.Background(), execution.New("t"), []Row{{"DEPENDANT_TEST_CASE", "TC000"}})
		var derr *DependencyError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "TC000", derr.Name)
	})
}

func TestParser_ResolutionErrorNamesStep(t *testing.T) {
	rows := []Row{{"BODY:KEY", "a"}, {"BODY:VALUE", "PreFlow:MOCK:MISSING"}}
	_, err := newParser(nil).Parse(context.Background(), execution.New("t"), rows)

	var verr *value.ValueResolutionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "BODY:VALUE", verr.Step)
}

func TestLoadRows_CSV(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "END_POINT,http://x/y\n\n" +
		"METHOD,GET\n" +
		"RESPONSE:JSON_PATH,\"a,b\",c\n" +
		",,\n"
	require.NoError(t, afero.WriteFile(fsys, "cases/TC001_get.csv", []byte(content), 0o644))

	rows, err := LoadRows(fsys, "cases/TC001_get.csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{"END_POINT", "http://x/y"}, rows[0])
	assert.Equal(t, Row{"RESPONSE:JSON_PATH", "a,b", "c"}, rows[2])
}

func TestLoadRows_CSVWithByteOrderMark(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "\uFEFFEND_POINT,http://x/y\nMETHOD, GET \n"
	require.NoError(t, afero.WriteFile(fsys, "TC003_bom.csv", []byte(content), 0o644))

	rows, err := LoadRows(fsys, "TC003_bom.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, EndPoint, rows[0].Keyword())
	assert.Equal(t, "http://x/y", rows[0].First())
	assert.Equal(t, "GET", rows[1].First())
}

func TestLoadRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"HEADERS:KEY", "a", "b"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"METHOD", "GET"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "TC002_sheet.xlsx", buf.Bytes(), 0o644))

	rows, err := LoadRows(fsys, "TC002_sheet.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Keyword("HEADERS:KEY"), rows[0].Keyword())
	assert.Equal(t, "GET", rows[1].First())
	assert.Len(t, rows[1], 3)
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("a/TC1.csv"))
	assert.True(t, IsSource("a/TC1.XLSX"))
	assert.False(t, IsSource("a/TC1.json"))
}
