package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

var errAlreadySent = errors.New("request already sent once")

type sendAttemptKey struct{}

// sendAttempt records the single response a call is allowed to receive.
type sendAttempt struct {
	resp *http.Response
	body []byte
}

// singleSendTransport wraps a RoundTripper that may re-issue requests (the
// secondary rate limit waiter) so that each call reaches the network once.
// A re-issue is refused and the first response is handed back instead.
type singleSendTransport struct {
	next http.RoundTripper
}

func (t *singleSendTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt := &sendAttempt{}
	req = req.WithContext(context.WithValue(req.Context(), sendAttemptKey{}, attempt))

	resp, err := t.next.RoundTrip(req)
	if errors.Is(err, errAlreadySent) {
		resp = attempt.resp
		resp.Body = io.NopCloser(bytes.NewReader(attempt.body))
		return resp, nil
	}
	return resp, err
}

// sendOnceTransport sits below the re-issuing RoundTripper and performs the
// actual send. The body of the first response is buffered so it can be
// returned intact whatever the layer above did with it.
type sendOnceTransport struct {
	base http.RoundTripper
}

func (t *sendOnceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt, _ := req.Context().Value(sendAttemptKey{}).(*sendAttempt)
	if attempt == nil {
		return t.base.RoundTrip(req)
	}
	if attempt.resp != nil {
		return nil, errAlreadySent
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	attempt.resp, attempt.body = resp, body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
