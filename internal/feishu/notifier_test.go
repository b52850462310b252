package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublishDigestPostsTextMessage(t *testing.T) {
	t.Parallel()

	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"code":0,"msg":"success"}`)
	}))
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(srv.URL, srv.Client(), nil)
	if err := n.PublishDigest(context.Background(), "Daily Digest", "section content"); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if got.MsgType != "text" {
		t.Errorf("msg_type = %q", got.MsgType)
	}
	if !strings.HasPrefix(got.Content.Text, "Daily Digest\n\n") {
		t.Errorf("text = %q, want title prefix", got.Content.Text)
	}
	if !strings.Contains(got.Content.Text, "section content") {
		t.Errorf("text = %q, want body included", got.Content.Text)
	}
}

func TestPublishDigestTruncatesLongBody(t *testing.T) {
	t.Parallel()

	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"code":0}`)
	}))
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(srv.URL, srv.Client(), nil)
	long := strings.Repeat("x", maxBodyRunes+500)
	if err := n.PublishDigest(context.Background(), "t", long); err != nil {
		t.Fatalf("PublishDigest: %v", err)
	}
	if !strings.HasSuffix(got.Content.Text, "(truncated)") {
		t.Error("long body not truncated")
	}
	if len([]rune(got.Content.Text)) > maxBodyRunes+100 {
		t.Errorf("text length = %d", len([]rune(got.Content.Text)))
	}
}

func TestPublishDigestSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":19001,"msg":"invalid receive_id"}`)
	}))
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(srv.URL, srv.Client(), nil)
	err := n.PublishDigest(context.Background(), "t", "b")
	if err == nil {
		t.Fatal("expected error for non-zero code")
	}
	if !strings.Contains(err.Error(), "19001") {
		t.Errorf("error = %v", err)
	}
}

func TestPublishDigestSurfacesHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(srv.URL, srv.Client(), nil)
	if err := n.PublishDigest(context.Background(), "t", "b"); err == nil {
		t.Fatal("expected error for HTTP failure")
	}
}
