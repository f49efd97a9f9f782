// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"testing"
	"time"
)

func TestLoginProtectionLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "user@example.com"
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("fresh account reported locked")
	}

	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d attempts", i+1)
		}
	}
	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked after max attempts")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want 1m", duration)
	}
	if locked, _ := lp.IsAccountLocked(email); !locked {
		t.Error("IsAccountLocked = false after lockout")
	}
}

func TestLoginProtectionSuccessClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "user@example.com"
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("locked after single failure following success")
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 1,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Hour,
	})

	email := "user@example.com"
	_, first := lp.RecordFailedAttempt(email)

	// Simulate the first lockout expiring.
	lp.attemptsMu.Lock()
	lp.failedAttempts[email].lockedUntil = time.Now().Add(-time.Second)
	lp.attemptsMu.Unlock()

	_, second := lp.RecordFailedAttempt(email)
	if second != 2*first {
		t.Errorf("second lockout = %v, want %v", second, 2*first)
	}
}

func TestCheckIPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     2,
	})

	ip := "203.0.113.9"
	if !lp.CheckIPRateLimit(ip) || !lp.CheckIPRateLimit(ip) {
		t.Fatal("burst requests rejected")
	}
	if lp.CheckIPRateLimit(ip) {
		t.Error("request beyond burst allowed")
	}
	if !lp.CheckIPRateLimit("198.51.100.7") {
		t.Error("different IP rejected")
	}
}
