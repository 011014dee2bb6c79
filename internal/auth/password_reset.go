package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

const OTPTTL = 10 * time.Minute

var errInvalidCode = apperr.InvalidInput("invalid or expired code")

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// RequestReset issues a 6-digit code for email, valid for OTPTTL.
func (s *Service) RequestReset(ctx context.Context, email string) (string, error) {
	code, err := newOTP()
	if err != nil {
		return "", err
	}
	err = s.store.Update(ctx, func(d *db.Database) error {
		u := d.FindUserByEmail(email)
		if u == nil {
			return apperr.NotFoundf("user", email, "no account with that email")
		}
		now := s.store.Now()
		d.PasswordResets = append(d.PasswordResets, db.PasswordReset{
			ID:        d.NextID(db.TablePasswordResets),
			Email:     u.Email,
			OTPCode:   code,
			ExpiresAt: now.Add(OTPTTL),
			CreatedAt: now,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// findReset returns the live reset row matching email and code.
func findReset(d *db.Database, email, code string, now time.Time) *db.PasswordReset {
	email = strings.TrimSpace(email)
	for i := len(d.PasswordResets) - 1; i >= 0; i-- {
		r := &d.PasswordResets[i]
		if strings.EqualFold(r.Email, email) && r.OTPCode == code && !r.Used && now.Before(r.ExpiresAt) {
			return r
		}
	}
	return nil
}

// VerifyOTP reports whether code is an unused, unexpired code for email.
func (s *Service) VerifyOTP(email, code string) bool {
	now := s.store.Now()
	var ok bool
	s.store.View(func(d *db.Database) {
		ok = findReset(d, email, code, now) != nil
	})
	return ok
}

// ResetPassword consumes the code and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, func(d *db.Database) error {
		r := findReset(d, email, code, s.store.Now())
		if r == nil {
			return errInvalidCode
		}
		r.Used = true
		u := d.FindUserByEmail(email)
		if u == nil {
			return apperr.NotFoundf("user", email, "no account with that email")
		}
		u.Password = hashed
		return nil
	})
}

// ChangePassword replaces the password of a signed-in user.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	hashed, err := hashPassword(next)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, func(d *db.Database) error {
		u := d.FindUser(userID)
		if u == nil {
			return apperr.NotFound("user", userID)
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)) != nil {
			return apperr.Unauthorized("current password is incorrect")
		}
		u.Password = hashed
		return nil
	})
}
