package joblytest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/lunagic/jobly/jobly"
	"gotest.tools/v3/assert"
)

type HTTPTestCase struct {
	Request  HTTPTestCaseRequest
	Expected HTTPTestCaseResponse
}

type HTTPTestCaseRequest struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as is when it is a string, otherwise as JSON
	Body     any
	Token    string
	Headers  http.Header
	Modifier func(request *http.Request)
}

func (testCase HTTPTestCaseRequest) BuildRequest(t *testing.T) *http.Request {
	var body io.Reader
	switch typedBody := testCase.Body.(type) {
	case nil:
	case string:
		body = strings.NewReader(typedBody)
	default:
		bodyBytes, err := json.Marshal(typedBody)
		assert.NilError(t, err)
		body = bytes.NewBuffer(bodyBytes)
	}

	requestURL := testCase.Path
	if len(testCase.Query) > 0 {
		requestURL += "?" + testCase.Query.Encode()
	}

	request := httptest.NewRequest(
		testCase.Method,
		requestURL,
		body,
	)

	if testCase.Headers != nil {
		request.Header = testCase.Headers
	}

	if testCase.Token != "" {
		request.Header.Set("Authorization", "Bearer "+testCase.Token)
	}

	if testCase.Modifier != nil {
		testCase.Modifier(request)
	}

	return request
}

type HTTPTestCaseResponse struct {
	Status  int
	Headers http.Header
	// Body is compared as is when it is a string, otherwise as JSON. A nil
	// Body skips the comparison.
	Body any
}

// TestRequest runs testCase against app and returns the raw response body.
func TestRequest(t *testing.T, app *jobly.App, testCase HTTPTestCase) []byte {
	t.Helper()

	recorder := httptest.NewRecorder()

	// Execute the request
	{
		app.Handler().ServeHTTP(
			recorder,
			testCase.Request.BuildRequest(t),
		)
	}

	// Assert status code
	{
		assert.Equal(t, testCase.Expected.Status, recorder.Code, recorder.Body.String())
	}

	// Assert headers
	{
		for name := range testCase.Expected.Headers {
			assert.Equal(t, testCase.Expected.Headers.Get(name), recorder.Header().Get(name))
		}
	}

	// Assert body
	if testCase.Expected.Body != nil {
		responseBody := strings.TrimSpace(recorder.Body.String())
		expectedBody := ""
		switch typedBody := testCase.Expected.Body.(type) {
		case string:
			expectedBody = typedBody
		default:
			jsonBytes, err := json.Marshal(typedBody)
			assert.NilError(t, err)
			expectedBody = string(jsonBytes)
		}

		assert.Equal(t, expectedBody, responseBody)
	}

	return recorder.Body.Bytes()
}
