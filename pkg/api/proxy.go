package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/alarmvault/alarmvault/pkg/httperr"
	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// HandleProxy serves an API Gateway proxy event through the router.
func (s *Server) HandleProxy(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	r, err := proxyRequest(ctx, req)
	if err != nil {
		w := newProxyWriter()
		renderError(w, httperr.Errorf(http.StatusBadRequest, "invalid request: %s", err))
		return w.response(), nil
	}

	w := newProxyWriter()

	s.ServeHTTP(w, r)

	return w.response(), nil
}

func proxyRequest(ctx context.Context, req events.APIGatewayProxyRequest) (*http.Request, error) {
	u := url.URL{Path: req.Path}

	if u.Path == "" {
		u.Path = "/"
	}

	q := url.Values{}

	for k, vs := range req.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	for k, v := range req.QueryStringParameters {
		if _, ok := q[k]; !ok {
			q.Set(k, v)
		}
	}

	u.RawQuery = q.Encode()

	body := []byte(req.Body)

	if req.IsBase64Encoded {
		data, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
		body = data
	}

	method := req.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	r, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for k, vs := range req.MultiValueHeaders {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}

	for k, v := range req.Headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}

	if id := req.RequestContext.RequestID; id != "" && r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, id)
	}

	r.RemoteAddr = req.RequestContext.Identity.SourceIP

	return r, nil
}

// proxyWriter buffers a response for the proxy integration.
type proxyWriter struct {
	body   bytes.Buffer
	code   int
	header http.Header
}

func newProxyWriter() *proxyWriter {
	return &proxyWriter{header: http.Header{}}
}

func (w *proxyWriter) Header() http.Header {
	return w.header
}

func (w *proxyWriter) Write(data []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.body.Write(data)
}

func (w *proxyWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
}

func (w *proxyWriter) response() events.APIGatewayProxyResponse {
	res := events.APIGatewayProxyResponse{
		StatusCode:        w.code,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
		Body:              w.body.String(),
	}

	if res.StatusCode == 0 {
		res.StatusCode = http.StatusOK
	}

	for k, vs := range w.header {
		if len(vs) == 0 {
			continue
		}
		res.Headers[k] = vs[0]
		res.MultiValueHeaders[k] = vs
	}

	return res
}
