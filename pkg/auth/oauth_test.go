package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNormalizeRedirectURL(t *testing.T) {
	cases := map[string]string{
		"urn:ietf:wg:oauth:2.0:oob":            "http://localhost:6789/oauth2callback",
		"http://localhost":                     "http://localhost:6789",
		"http://127.0.0.1:9999/cb":             "http://127.0.0.1:6789/cb",
		"http://localhost:6789/oauth2callback": "http://localhost:6789/oauth2callback",
		"https://example.com/callback":         "https://example.com/callback",
	}
	for in, want := range cases {
		if got := normalizeRedirectURL(in); got != want {
			t.Errorf("normalizeRedirectURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", TokenFile)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken failed: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile failed: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" || !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("Unexpected token: %+v", got)
	}
}

func TestResetTokenMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := ResetToken(); err != nil {
		t.Errorf("ResetToken on missing file: %v", err)
	}
}

func TestCallbackHandler(t *testing.T) {
	cases := []struct {
		query    string
		status   int
		wantCode string
	}{
		{"?state=s1&code=abc", http.StatusOK, "abc"},
		{"?state=forged&code=abc", http.StatusBadRequest, ""},
		{"?code=abc", http.StatusBadRequest, ""},
		{"?state=s1", http.StatusBadRequest, ""},
		{"?state=s1&error=access_denied", http.StatusForbidden, ""},
		{"", http.StatusNotFound, ""},
	}
	for _, c := range cases {
		codeCh := make(chan string, 1)
		errCh := make(chan error, 1)
		rec := httptest.NewRecorder()
		callbackHandler("s1", codeCh, errCh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth2callback"+c.query, nil))

		if rec.Code != c.status {
			t.Errorf("%s: expected status %d, got %d", c.query, c.status, rec.Code)
		}
		if c.wantCode != "" {
			select {
			case got := <-codeCh:
				if got != c.wantCode {
					t.Errorf("%s: expected code %s, got %s", c.query, c.wantCode, got)
				}
			default:
				t.Errorf("%s: expected a code", c.query)
			}
			continue
		}
		if c.status == http.StatusNotFound {
			if len(errCh) != 0 {
				t.Errorf("%s: expected unrelated request to be ignored", c.query)
			}
		} else {
			select {
			case <-errCh:
			default:
				t.Errorf("%s: expected an error", c.query)
			}
		}
		if len(codeCh) != 0 {
			t.Errorf("%s: expected no code to be accepted", c.query)
		}
	}
}
