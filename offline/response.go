package offline

import (
	"io"
	"net/http"
)

// Response is a fully buffered HTTP response that can be stored in a cache.
type Response struct {
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Clone returns a deep copy so cached entries cannot be altered by callers.
func (r *Response) Clone() *Response {
	c := &Response{
		StatusCode: r.StatusCode,
		Header:     r.Header.Clone(),
		Body:       make([]byte, len(r.Body)),
	}
	copy(c.Body, r.Body)
	return c
}

// Write sends the response to w.
func (r *Response) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.StatusCode)
	_, err := w.Write(r.Body)
	return err
}

func readResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	header := resp.Header.Clone()
	// 本文はすでにバッファ済み
	header.Del("Content-Length")
	header.Del("Transfer-Encoding")
	return &Response{StatusCode: resp.StatusCode, Header: header, Body: body}, nil
}
