/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import "testing"

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			apiKey: "sk-test",
			bind:   "0.0.0.0",
			model:  "gpt-4o-mini",
			port:   8080,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.apiKey = "" },
			wantErr: true,
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.model = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.port = 70000 },
			wantErr: true,
		},
		{
			name:    "tls cert without key",
			mutate:  func(c *Config) { c.tlsCert = "cert.pem" },
			wantErr: true,
		},
		{
			name: "tls cert and key together",
			mutate: func(c *Config) {
				c.tlsCert = "cert.pem"
				c.tlsKey = "key.pem"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.validate()
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Fatalf("validate() error = %v, want error %v", err, tt.wantErr)
			}
		})
	}
}
