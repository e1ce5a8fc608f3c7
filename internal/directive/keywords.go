package directive

// Keyword is the first cell of a row.
type Keyword string

const (
	EndPoint          Keyword = "END_POINT"
	Method            Keyword = "METHOD"
	ParamsKey         Keyword = "PARAMS:KEY"
	ParamsValue       Keyword = "PARAMS:VALUE"
	AuthKey           Keyword = "AUTH:KEY"
	AuthValue         Keyword = "AUTH:VALUE"
	HeadersKey        Keyword = "HEADERS:KEY"
	HeadersValue      Keyword = "HEADERS:VALUE"
	BodyKey           Keyword = "BODY:KEY"
	BodyValue         Keyword = "BODY:VALUE"
	ResponseJSONPath  Keyword = "RESPONSE:JSON_PATH"
	ResponseExpected  Keyword = "RESPONSE:EXPECTED_VALUE"
	ResponseStore     Keyword = "RESPONSE:STORE_VALUE"
	ResponseCode      Keyword = "RESPONSE:CODE"
	ResponseSchema    Keyword = "RESPONSE:SCHEMA"
	DependantTestCase Keyword = "DEPENDANT_TEST_CASE"
)

// Row is one line of a test-case file: a keyword followed by raw values.
type Row []string

// Keyword returns the row's keyword, or "" for an empty row.
func (r Row) Keyword() Keyword {
	if len(r) == 0 {
		return ""
	}
	return Keyword(trim(r[0]))
}

// Values returns the cells after the keyword.
func (r Row) Values() []string {
	if len(r) < 2 {
		return nil
	}
	return r[1:]
}

// First returns the trimmed first value, or "" when the row has none.
func (r Row) First() string {
	if len(r) < 2 {
		return ""
	}
	return trim(r[1])
}
