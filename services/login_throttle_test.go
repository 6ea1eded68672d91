package services

import (
	"context"
	"testing"
	"time"

	"pos-analytics/db"
)

func TestCooldownSecondsForFailCount(t *testing.T) {
	tests := []struct {
		failCount int
		want      int
	}{
		{0, 1},
		{1, 2},
		{2, 4},
		{4, 16},
		{5, 30}, // 32 capped
		{10, 30},
	}
	for _, tt := range tests {
		got := CooldownSecondsForFailCount(tt.failCount)
		if got != tt.want {
			t.Errorf("CooldownSecondsForFailCount(%d) = %d, want %d", tt.failCount, got, tt.want)
		}
	}
}

func TestWaitSeconds(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	soon := now.Add(1500 * time.Millisecond)
	later := now.Add(30 * time.Second)
	tests := []struct {
		name  string
		until *time.Time
		want  int
	}{
		{"none", nil, 0},
		{"expired", &past, 0},
		{"exact", &now, 0},
		{"fractional rounds up", &soon, 2},
		{"full", &later, 31},
	}
	for _, tt := range tests {
		if got := waitSeconds(tt.until, now); got != tt.want {
			t.Errorf("%s: waitSeconds = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestLoginThrottle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping throttle integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping throttle integration test: no DB pool")
	}
	ctx := context.Background()
	const testUserID int64 = 999999997
	role := ThrottleRoleStaff
	defer func() { _ = RecordLoginSuccess(ctx, testUserID, role) }()

	if err := RecordLoginSuccess(ctx, testUserID, role); err != nil {
		t.Fatalf("RecordLoginSuccess: %v", err)
	}
	wait, err := LoginThrottleWaitSeconds(ctx, testUserID, role)
	if err != nil {
		t.Fatalf("LoginThrottleWaitSeconds after success: %v", err)
	}
	if wait != 0 {
		t.Errorf("after success: wait = %d, want 0", wait)
	}

	if err := RecordLoginFailed(ctx, testUserID, role); err != nil {
		t.Fatalf("RecordLoginFailed: %v", err)
	}
	wait, err = LoginThrottleWaitSeconds(ctx, testUserID, role)
	if err != nil {
		t.Fatalf("LoginThrottleWaitSeconds after fail: %v", err)
	}
	if wait <= 0 || wait > ThrottleCooldownCapSeconds+1 {
		t.Errorf("after one fail: wait = %d, want in (0, %d]", wait, ThrottleCooldownCapSeconds+1)
	}

	for i := 0; i < 8; i++ {
		_ = RecordLoginFailed(ctx, testUserID, role)
	}
	wait, _ = LoginThrottleWaitSeconds(ctx, testUserID, role)
	if wait > ThrottleCooldownCapSeconds+1 {
		t.Errorf("after 9 fails: wait = %d, want <= cap", wait)
	}
}
