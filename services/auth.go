package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pos-analytics/db"
	"pos-analytics/models"
)

var ErrEmployeeNotFound = errors.New("active employee not found")

// ThrottledError is returned while a login cooldown is active.
type ThrottledError struct {
	Wait int // seconds
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed logins, retry in %ds", e.Wait)
}

// HashPassword returns a bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ProvisionStaffCredential links a Telegram user to an active employee and
// returns a freshly generated password. An existing credential for the same
// Telegram user is replaced.
func ProvisionStaffCredential(ctx context.Context, tgUserID int64, employeeID string) (string, error) {
	var active bool
	err := db.Pool.QueryRow(ctx, `SELECT is_active FROM employees WHERE id = $1`, employeeID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrEmployeeNotFound
		}
		return "", err
	}
	if !active {
		return "", ErrEmployeeNotFound
	}

	plain, err := GenerateSecurePassword()
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := HashPassword(plain)
	if err != nil {
		return "", err
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO staff_credentials (tg_user_id, employee_id, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (tg_user_id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			password_hash = EXCLUDED.password_hash,
			updated_at = now()`,
		tgUserID, employeeID, hash,
	)
	if err != nil {
		return "", fmt.Errorf("save credential: %w", err)
	}
	return plain, nil
}

// AuthenticateStaff checks password for tgUserID and returns the session of
// the linked employee. Failed attempts start an exponential cooldown.
func AuthenticateStaff(ctx context.Context, tgUserID int64, password string) (*models.Session, error) {
	wait, err := LoginThrottleWaitSeconds(ctx, tgUserID, ThrottleRoleStaff)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		return nil, &ThrottledError{Wait: wait}
	}

	var hash, role string
	s := models.Session{TelegramID: tgUserID}
	err = db.Pool.QueryRow(ctx, `
		SELECT c.password_hash, e.id, e.name, e.email, e.role
		FROM staff_credentials c
		JOIN employees e ON e.id = c.employee_id
		WHERE c.tg_user_id = $1 AND e.is_active`,
		tgUserID,
	).Scan(&hash, &s.UserID, &s.Name, &s.Email, &role)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		if recErr := RecordLoginFailed(ctx, tgUserID, ThrottleRoleStaff); recErr != nil {
			return nil, recErr
		}
		return nil, ErrUnauthorized
	}
	if err := RecordLoginSuccess(ctx, tgUserID, ThrottleRoleStaff); err != nil {
		return nil, err
	}
	s.Role = models.ParseRole(role)
	return &s, nil
}
