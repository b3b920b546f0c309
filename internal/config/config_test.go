package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Poller.Interval != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %v", cfg.Poller.Interval)
	}
	if cfg.API.RequestTimeout != 8*time.Second {
		t.Errorf("expected 8s request timeout, got %v", cfg.API.RequestTimeout)
	}
	if cfg.Poller.ErrorThreshold != 3 {
		t.Errorf("expected threshold 3, got %d", cfg.Poller.ErrorThreshold)
	}
	if cfg.EventBus.ReplayLast {
		t.Error("replay should be off by default")
	}
	if cfg.Server.ListenAddr() != ":8090" {
		t.Errorf("unexpected listen addr %q", cfg.Server.ListenAddr())
	}
}

func TestFromViper_TrimsBaseURLAndSplitsTokens(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{
		"CREWWATCH_API_BASE_URL": "https://api.example.com/api/realtime/",
		"CREWWATCH_ALERT_TOKENS": "tok-a, tok-b,,",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.com/api/realtime" {
		t.Errorf("trailing slash not trimmed: %q", cfg.API.BaseURL)
	}
	if len(cfg.Alerts.Tokens) != 2 || cfg.Alerts.Tokens[1] != "tok-b" {
		t.Errorf("unexpected tokens: %v", cfg.Alerts.Tokens)
	}
}

func TestFromViper_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]any
		want     error
	}{
		{"empty base url", map[string]any{"CREWWATCH_API_BASE_URL": ""}, ErrMissingBaseURL},
		{"zero interval", map[string]any{"CREWWATCH_POLL_INTERVAL": "0s"}, ErrInvalidInterval},
		{"negative timeout", map[string]any{"CREWWATCH_REQUEST_TIMEOUT": "-1s"}, ErrInvalidTimeout},
		{"zero threshold", map[string]any{"CREWWATCH_ERROR_THRESHOLD": 0}, ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(newViper(tt.override))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
