// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const validSecret = "Abc123!xyz-valid-session-secret-01"

func TestLoad(t *testing.T) {
	t.Setenv("CASEDESK_SESSION_SECRET", validSecret)
	t.Setenv("CASEDESK_SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.ServerAddr() != "localhost:9090" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("default Env should be development")
	}
	if cfg.UseRedisCache() {
		t.Error("Redis should be off by default")
	}
	if cfg.LegacyImportEnabled() {
		t.Error("legacy import should be off by default")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("CASEDESK_SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load accepted an empty session secret")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("CASEDESK_SESSION_SECRET", "too-short")
	_, err := Load()
	if err == nil {
		t.Fatal("Load accepted a short session secret")
	}
	if !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("err = %v, want length hint", err)
	}
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	t.Setenv("CASEDESK_SESSION_SECRET", "change-me-to-32-byte-secret-key!")
	if _, err := Load(); err == nil {
		t.Error("Load accepted a known default secret")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should fail")
	}
	if !hasMinimumEntropy(validSecret) {
		t.Error("mixed secret should pass")
	}
}
