package directive

// TestCaseSpec is the parsed and resolved content of one test-case file.
// Key lists are kept raw; value lists hold resolved values, index-aligned with
// their keys.
type TestCaseSpec struct {
	Endpoint string
	Method   string

	ParamKeys    []string
	ParamValues  []any
	AuthKeys     []string
	AuthValues   []any
	HeaderKeys   []string
	HeaderValues []any
	BodyKeys     []string
	BodyValues   []any

	JSONPaths      []string
	ExpectedValues []any
	StoreKeys      []any

	ResponseCode string
	Schema       string

	// Dependencies lists the DEPENDANT_TEST_CASE names run while parsing, in order.
	Dependencies []string
}

// pair names an index-aligned pair of list fields.
type pair struct {
	keys      Keyword
	values    Keyword
	keyLen    func(*TestCaseSpec) int
	valueLen  func(*TestCaseSpec) int
	keysSet   func(*TestCaseSpec) bool
	valuesSet func(*TestCaseSpec) bool
}

var alignedPairs = []pair{
	{ParamsKey, ParamsValue,
		func(s *TestCaseSpec) int { return len(s.ParamKeys) }, func(s *TestCaseSpec) int { return len(s.ParamValues) },
		func(s *TestCaseSpec) bool { return s.ParamKeys != nil }, func(s *TestCaseSpec) bool { return s.ParamValues != nil }},
	{AuthKey, AuthValue,
		func(s *TestCaseSpec) int { return len(s.AuthKeys) }, func(s *TestCaseSpec) int { return len(s.AuthValues) },
		func(s *TestCaseSpec) bool { return s.AuthKeys != nil }, func(s *TestCaseSpec) bool { return s.AuthValues != nil }},
	{HeadersKey, HeadersValue,
		func(s *TestCaseSpec) int { return len(s.HeaderKeys) }, func(s *TestCaseSpec) int { return len(s.HeaderValues) },
		func(s *TestCaseSpec) bool { return s.HeaderKeys != nil }, func(s *TestCaseSpec) bool { return s.HeaderValues != nil }},
	{BodyKey, BodyValue,
		func(s *TestCaseSpec) int { return len(s.BodyKeys) }, func(s *TestCaseSpec) int { return len(s.BodyValues) },
		func(s *TestCaseSpec) bool { return s.BodyKeys != nil }, func(s *TestCaseSpec) bool { return s.BodyValues != nil }},
	{ResponseJSONPath, ResponseExpected,
		func(s *TestCaseSpec) int { return len(s.JSONPaths) }, func(s *TestCaseSpec) int { return len(s.ExpectedValues) },
		func(s *TestCaseSpec) bool { return s.JSONPaths != nil }, func(s *TestCaseSpec) bool { return s.ExpectedValues != nil }},
	{ResponseStore, ResponseJSONPath,
		func(s *TestCaseSpec) int { return len(s.StoreKeys) }, func(s *TestCaseSpec) int { return len(s.JSONPaths) },
		func(s *TestCaseSpec) bool { return s.StoreKeys != nil }, func(s *TestCaseSpec) bool { return s.JSONPaths != nil }},
}

// checkArity returns a DirectiveParseError for the first pair whose lists are both
// present and differ in length.
func (s *TestCaseSpec) checkArity() error {
	for _, p := range alignedPairs {
		if !p.keysSet(s) || !p.valuesSet(s) {
			continue
		}
		if k, v := p.keyLen(s), p.valueLen(s); k != v {
			return &DirectiveParseError{
				Keyword:    p.keys,
				Other:      p.values,
				KeyCount:   k,
				ValueCount: v,
			}
		}
	}
	return nil
}
