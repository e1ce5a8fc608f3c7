// Package directive turns the rows of a test-case file into a TestCaseSpec.
//
// Each row starts with a keyword naming the field it defines, for example
//
//	END_POINT,https://api.example.com/users
//	METHOD,POST
//	HEADERS:KEY,Content-Type,X-Trace
//	HEADERS:VALUE,application/json,PreFlow:MOCK:UUID
//	RESPONSE:JSON_PATH,status,id
//	RESPONSE:EXPECTED_VALUE,created:10,NONE
//	RESPONSE:STORE_VALUE,NONE,userId
//
// Values are resolved while parsing, in file order. A DEPENDANT_TEST_CASE row runs
// the named test case to completion before the next row is read, so later rows can
// use variables it stored. Unknown keywords are ignored.
package directive
