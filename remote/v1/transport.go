package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrNoToken signals that the token supplier had no credential; callers treat
// this as an authentication failure distinct from transport errors.
var ErrNoToken = errors.New("no credential available")

// TokenProvider supplies the bearer credential for each request. Absence of a
// token is an authentication failure, not a transport one.
type TokenProvider interface {
	GetToken() (string, error)
}

// StaticToken is a TokenProvider holding a fixed credential.
type StaticToken string

func (s StaticToken) GetToken() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// StatusError is a non-2xx response, carrying the body as error detail.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Body)
}

// Unauthenticated reports whether the error is a credential problem rather
// than a generic transport or server failure.
func Unauthenticated(err error) bool {
	if errors.Is(err, ErrNoToken) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
	}
	return false
}

type Response struct {
	Data []byte
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	Tokens     TokenProvider
	HTTPClient *http.Client
}

func NewTransport(baseURL string, tokens TokenProvider) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		Tokens:     tokens,
		HTTPClient: &http.Client{},
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query map[string]string) string {
	u, _ := url.Parse(t.BaseURL + path)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Post sends a POST request with JSON body. Any 2xx response is success;
// anything else comes back as a *StatusError.
func (t *Transport) Post(path string, data any, query map[string]string) (*Response, error) {
	fullURL := t.buildURL(path, query)

	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	token, err := t.Tokens.GetToken()
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, fullURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	resdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Data: resdata,
	}, nil
}
