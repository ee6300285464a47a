package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Jar is a cookie jar for the API's session cookie that can be written to
// disk, so a signed-in teacher stays signed in across runs.
type Jar struct {
	mu     sync.RWMutex
	inner  *cookiejar.Jar
	apiURL *url.URL
	path   string // empty keeps the session in memory only
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewJar creates a jar scoped to baseURL and loads any cookies stored at path.
func NewJar(baseURL, path string) (*Jar, error) {
	apiURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	inner, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	j := &Jar{inner: inner, apiURL: apiURL, path: path}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) load() error {
	if j.path == "" {
		return nil
	}
	data, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// a corrupt session file just means signing in again
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	j.SetCookies(j.apiURL, cookies)
	return nil
}

// Save writes the session cookies for the API host to disk.
func (j *Jar) Save() error {
	if j.path == "" {
		return nil
	}
	cookies := j.Cookies(j.apiURL)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return os.WriteFile(j.path, data, 0600)
}

// Clear drops every cookie and removes the stored session.
func (j *Jar) Clear() error {
	inner, err := newCookieJar()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
	if j.path == "" {
		return nil
	}
	if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// HasSession reports whether any cookie is held for the API host.
func (j *Jar) HasSession() bool {
	return len(j.Cookies(j.apiURL)) > 0
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.inner.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

func newCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}
