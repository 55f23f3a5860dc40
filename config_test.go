package main

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "defaults",
			cfg:  Config{port: 8080, peekDuration: 3 * time.Second},
		},
		{
			name:    "port too low",
			cfg:     Config{port: 0, peekDuration: 3 * time.Second},
			wantErr: "invalid port",
		},
		{
			name:    "port too high",
			cfg:     Config{port: 70000, peekDuration: 3 * time.Second},
			wantErr: "invalid port",
		},
		{
			name:    "tls cert without key",
			cfg:     Config{port: 8080, peekDuration: 3 * time.Second, tlsCert: "cert.pem"},
			wantErr: "--tls-cert and --tls-key",
		},
		{
			name:    "tls key without cert",
			cfg:     Config{port: 8080, peekDuration: 3 * time.Second, tlsKey: "key.pem"},
			wantErr: "--tls-cert and --tls-key",
		},
		{
			name: "tls pair",
			cfg:  Config{port: 8080, peekDuration: 3 * time.Second, tlsCert: "cert.pem", tlsKey: "key.pem"},
		},
		{
			name:    "peek too short",
			cfg:     Config{port: 8080, peekDuration: 100 * time.Millisecond},
			wantErr: "invalid peek duration",
		},
		{
			name:    "peek too long",
			cfg:     Config{port: 8080, peekDuration: time.Minute},
			wantErr: "invalid peek duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := Config{}
	if got := cfg.scheme(); got != "http" {
		t.Fatalf("scheme() = %q, want http", got)
	}

	cfg = Config{tlsCert: "cert.pem", tlsKey: "key.pem"}
	if got := cfg.scheme(); got != "https" {
		t.Fatalf("scheme() = %q, want https", got)
	}
}
