package cloudinary

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSign(t *testing.T) {
	c := New("demo", "key123", "topsecret", "pedia_attendance")
	params := map[string]string{
		"timestamp": "1700000000",
		"api_key":   "key123",
		"folder":    "pedia_attendance",
	}

	// api_key is excluded; remaining params sorted and joined with the secret.
	want := fmt.Sprintf("%x", sha1.Sum([]byte("folder=pedia_attendance&timestamp=1700000000topsecret")))
	if got := c.sign(params); got != want {
		t.Fatalf("sign = %s, want %s", got, want)
	}
}

func TestUploadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, "/v1_1/demo/image/upload") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("folder"); got != "pedia_attendance" {
			t.Errorf("folder = %q", got)
		}
		if got := r.FormValue("file"); !strings.HasPrefix(got, "data:image/jpeg;base64,") {
			t.Errorf("file not wrapped as data URL: %q", got)
		}
		if r.FormValue("signature") == "" {
			t.Error("signature missing")
		}
		fmt.Fprint(w, `{"public_id":"pedia_attendance/abc","secure_url":"https://res.example/abc.jpg","format":"jpg","bytes":42}`)
	}))
	defer srv.Close()

	c := New("demo", "key123", "topsecret", "pedia_attendance")
	c.BaseURL = srv.URL

	url, err := c.Upload(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://res.example/abc.jpg" {
		t.Fatalf("url = %q", url)
	}
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid image file"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New("demo", "key123", "topsecret", "pedia_attendance")
	c.BaseURL = srv.URL

	if _, err := c.Upload(context.Background(), "not-an-image"); err == nil {
		t.Fatal("expected error for rejected upload")
	}
}

func TestUploadUnreachable(t *testing.T) {
	c := New("demo", "key123", "topsecret", "pedia_attendance")
	c.BaseURL = "http://127.0.0.1:1"

	if _, err := c.Upload(context.Background(), "aGVsbG8="); err == nil {
		t.Fatal("expected error when store unreachable")
	}
}
