package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// HandlerTest runs requests against an http.Handler and records the response.
type HandlerTest struct {
	Handler http.Handler
	Headers map[string]string

	body   []byte
	code   int
	header http.Header
}

func NewHandler(h http.Handler) *HandlerTest {
	return &HandlerTest{Handler: h, Headers: map[string]string{}}
}

// Request executes an HTTP request with an optional raw body.
func (f *HandlerTest) Request(method, url string, body []byte) error {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()

	f.Handler.ServeHTTP(w, req)

	f.body = w.Body.Bytes()
	f.code = w.Code
	f.header = w.Header()

	return nil
}

func (f *HandlerTest) AssertCode(t *testing.T, code int) {
	assert.Equal(t, code, f.code, string(f.body))
}

// AssertError asserts a JSON error body.
func (f *HandlerTest) AssertError(t *testing.T, message string) {
	var err struct {
		Error string `json:"error"`
	}

	if assert.Nil(t, json.Unmarshal(f.Body(), &err)) {
		assert.Equal(t, message, err.Error)
	}
}

// AssertJSON asserts a JSON response ignoring whitespace differences.
func (f *HandlerTest) AssertJSON(t *testing.T, body string) {
	b1, err1 := stripJSON([]byte(body))
	b2, err2 := stripJSON(f.Body())

	if assert.NoError(t, err1) && assert.NoError(t, err2) {
		assert.Equal(t, string(b1), string(b2))
	}
}

// Decode unmarshals the response body into v.
func (f *HandlerTest) Decode(t *testing.T, v interface{}) {
	assert.NoError(t, json.Unmarshal(f.Body(), v), string(f.body))
}

func (f *HandlerTest) Body() []byte {
	return f.body
}

func (f *HandlerTest) Code() int {
	return f.code
}

func (f *HandlerTest) Header() http.Header {
	return f.header
}

func stripJSON(data []byte) ([]byte, error) {
	var obj interface{}

	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	return json.Marshal(obj)
}
