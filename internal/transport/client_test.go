package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestDo_OfflineMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := New(server.URL, WithConnectivity(NewSwitch(false)))
	_, err := client.Do(context.Background(), http.MethodGet, "/dashboard/stats", nil)

	if !errors.Is(err, ErrOffline) {
		t.Fatalf("expected offline error, got %v", err)
	}
	if KindOf(err) != KindOffline {
		t.Errorf("expected kind offline, got %s", KindOf(err))
	}
	if hits.Load() != 0 {
		t.Errorf("expected no request, server saw %d", hits.Load())
	}
}

func TestDo_TimeoutIsDistinguishable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL, WithTimeout(50*time.Millisecond))
	_, err := client.Do(context.Background(), http.MethodGet, "/jobs/active", nil)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !strings.Contains(te.Message, "timed out after 50ms") {
		t.Errorf("unexpected timeout message: %q", te.Message)
	}
}

func TestDo_TransportFailure(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client := New("http://" + addr)
	_, err = client.Do(context.Background(), http.MethodGet, "/health", nil)

	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind, got %s (%v)", KindOf(err), err)
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrOffline) {
		t.Error("transport failure must not match timeout or offline")
	}
}

func TestDo_NonOKStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db down"}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Do(context.Background(), http.MethodGet, "/crew/locations", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"error":"db down"}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestDo_SendsJSONBodyAndHeaders(t *testing.T) {
	var got struct {
		CrewID string `json:"crew_id"`
	}
	var contentType, requestID, auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		requestID = r.Header.Get("X-Request-ID")
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := New(server.URL, WithTokenSource(StaticToken("abc123")))
	_, err := client.Do(context.Background(), http.MethodPost, "/crew/location", map[string]string{"crew_id": "crew-7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", contentType)
	}
	if requestID == "" {
		t.Error("expected X-Request-ID header")
	}
	if auth != "Bearer abc123" {
		t.Errorf("unexpected Authorization header %q", auth)
	}
	if got.CrewID != "crew-7" {
		t.Errorf("body not delivered, got %+v", got)
	}
}

func TestServiceTokenSource_MintsAndCaches(t *testing.T) {
	ts := NewServiceTokenSource("s3cret", "crewwatch")

	first, err := ts.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := ts.Token()
	if first != second {
		t.Error("expected cached token to be reused")
	}

	parsed, err := jwt.Parse(first, func(token *jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["user_id"] != "crewwatch" || claims["role"] != "admin" {
		t.Errorf("unexpected claims: %v", claims)
	}
}

func TestProbeAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.example.com/api/realtime", "api.example.com:443"},
		{"http://localhost:8080/api/realtime", "localhost:8080"},
		{"http://10.0.0.5", "10.0.0.5:80"},
	}
	for _, tt := range tests {
		got, err := ProbeAddr(tt.in)
		if err != nil {
			t.Errorf("ProbeAddr(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ProbeAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProbe_CachesResult(t *testing.T) {
	var dials int
	p := NewProbe("example.invalid:443")
	p.dial = func(network, address string, timeout time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("no route")
	}

	if p.Online() {
		t.Error("expected offline when dial fails")
	}
	p.Online()
	if dials != 1 {
		t.Errorf("expected one dial within TTL, got %d", dials)
	}
}
