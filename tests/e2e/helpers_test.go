//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"
	"testing"
)

var emailCounter int64

// uniqueEmail produces a fresh address per call so tests never collide.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@e2e.test", prefix, atomic.AddInt64(&emailCounter, 1))
}

// browserClient is an HTTP client with a cookie jar and redirects
// disabled, so tests observe the guard's 302s directly.
type browserClient struct {
	t      *testing.T
	client *http.Client
}

func newBrowserClient(t *testing.T) *browserClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &browserClient{
		t: t,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *browserClient) postJSON(path string, payload any) (int, map[string]any) {
	c.t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		c.t.Fatalf("failed to marshal payload: %v", err)
	}

	resp, err := c.client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		c.t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func (c *browserClient) getJSON(path string) (int, map[string]any) {
	c.t.Helper()

	resp, err := c.client.Get(baseURL + path)
	if err != nil {
		c.t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

// get performs a page navigation and returns the raw response.
func (c *browserClient) get(path string) *http.Response {
	c.t.Helper()

	resp, err := c.client.Get(baseURL + path)
	if err != nil {
		c.t.Fatalf("GET %s failed: %v", path, err)
	}
	resp.Body.Close()
	return resp
}

// sessionCookies returns the session cookie values currently in the jar,
// keyed by cookie name.
func (c *browserClient) sessionCookies() map[string]string {
	c.t.Helper()

	req, _ := http.NewRequest(http.MethodGet, baseURL+"/", nil)
	cookies := map[string]string{}
	for _, cookie := range c.client.Jar.Cookies(req.URL) {
		cookies[cookie.Name] = cookie.Value
	}
	return cookies
}

func (c *browserClient) signUp(email, password, firstName string) map[string]any {
	c.t.Helper()

	status, body := c.postJSON("/api/auth/signup", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
	})
	if status != http.StatusCreated {
		c.t.Fatalf("sign-up returned %d: %v", status, body)
	}
	return body
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("status: got %d, want %d", got, want)
	}
}
