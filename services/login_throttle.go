package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"pos-analytics/db"
)

const (
	ThrottleRoleStaff          = "staff"
	ThrottleCooldownCapSeconds = 30
)

// LoginThrottleWaitSeconds returns how many seconds tgUserID must wait before
// the next login attempt, 0 if there is no cooldown.
func LoginThrottleWaitSeconds(ctx context.Context, tgUserID int64, role string) (int, error) {
	var cooldownUntil *time.Time
	err := db.Pool.QueryRow(ctx, `
		SELECT cooldown_until FROM login_throttle WHERE tg_user_id = $1 AND role = $2`,
		tgUserID, role,
	).Scan(&cooldownUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return waitSeconds(cooldownUntil, time.Now()), nil
}

// waitSeconds rounds the remaining cooldown up to whole seconds.
func waitSeconds(until *time.Time, now time.Time) int {
	if until == nil || !now.Before(*until) {
		return 0
	}
	return int(until.Sub(now).Seconds()) + 1
}

// RecordLoginFailed increments fail_count and pushes cooldown_until to
// now + min(30, 2^fail_count) seconds.
func RecordLoginFailed(ctx context.Context, tgUserID int64, role string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (tg_user_id, role, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, $2, 1, now(), now() + make_interval(secs => $3), now())
		ON CONFLICT (tg_user_id, role) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			cooldown_until = now() + make_interval(secs => LEAST($4, POWER(2, login_throttle.fail_count + 1))),
			updated_at = now()`,
		tgUserID, role, CooldownSecondsForFailCount(1), ThrottleCooldownCapSeconds,
	)
	return err
}

// RecordLoginSuccess clears the cooldown for the user and role.
func RecordLoginSuccess(ctx context.Context, tgUserID int64, role string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (tg_user_id, role, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, $2, 0, NULL, NULL, now())
		ON CONFLICT (tg_user_id, role) DO UPDATE SET
			fail_count = 0,
			last_failed_at = NULL,
			cooldown_until = NULL,
			updated_at = now()`,
		tgUserID, role,
	)
	return err
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := math.Pow(2, float64(failCount))
	if s > ThrottleCooldownCapSeconds {
		return ThrottleCooldownCapSeconds
	}
	return int(s)
}
