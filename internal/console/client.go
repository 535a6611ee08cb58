package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const fallbackRequestError = "Ошибка запроса"

// HTTPError is a completed request that answered with a non-2xx status.
type HTTPError struct {
	Status int
	// ServerError is the `error` field of a JSON body, if any.
	ServerError string
	// Message is what the user is shown: ServerError, else the raw body
	// text, else a generic message.
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Client performs admin API calls. Token, when set, is sent as a Bearer
// credential.
type Client struct {
	HTTP  *http.Client
	Token string
}

func NewClient(httpClient *http.Client, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{HTTP: httpClient, Token: token}
}

// FetchJSON sends the request and returns the response body of a 2xx reply.
// Any other status becomes an *HTTPError; transport failures are returned
// wrapped as they are.
func (c *Client) FetchJSON(ctx context.Context, method, url string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp.StatusCode, resp.Header.Get("Content-Type"), data)
	}
	return data, nil
}

func newHTTPError(status int, contentType string, body []byte) *HTTPError {
	e := &HTTPError{Status: status, Message: fallbackRequestError}

	if strings.Contains(contentType, "json") {
		e.ServerError = serverError(body)
		if e.ServerError != "" {
			e.Message = e.ServerError
		}
		return e
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		e.Message = text
	}
	return e
}

// serverError reads `error` as a string or as an object with a message.
func serverError(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &obj); err == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}

// decodeList accepts both `{"<key>": [...]}` and a bare JSON array.
func decodeList[T any](raw []byte, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, nil
	}
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}
