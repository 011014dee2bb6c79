package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

const (
	MinPasswordLength = 6
	TokenTTL          = 72 * time.Hour
)

// Service owns accounts, password resets and token issuance.
type Service struct {
	store  *db.Store
	secret []byte
}

func NewService(store *db.Store, secret []byte) *Service {
	return &Service{store: store, secret: secret}
}

type RegisterInput struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         db.Role `json:"role"`
	Department   string  `json:"department"`
	City         string  `json:"city"`
	Address      string  `json:"address"`
	BusinessName string  `json:"businessName"`
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperr.InvalidInput("password must be at least %d characters", MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register creates a buyer or seller account. Emails are unique ignoring case.
func (s *Service) Register(ctx context.Context, in RegisterInput) (db.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return db.User{}, apperr.InvalidInput("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return db.User{}, apperr.InvalidInput("invalid email")
	}
	if in.Role != db.RoleBuyer && in.Role != db.RoleSeller {
		return db.User{}, apperr.InvalidInput("role must be buyer or seller")
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return db.User{}, err
	}

	var user db.User
	err = s.store.Update(ctx, func(d *db.Database) error {
		if d.FindUserByEmail(in.Email) != nil {
			return apperr.DuplicateAccount(in.Email)
		}
		user = db.User{
			ID:           d.NextID(db.TableUsers),
			Role:         in.Role,
			Name:         in.Name,
			Phone:        strings.TrimSpace(in.Phone),
			Email:        in.Email,
			Password:     hashed,
			CreatedAt:    s.store.Now(),
			Department:   in.Department,
			City:         in.City,
			Address:      in.Address,
			BusinessName: in.BusinessName,
		}
		d.Users = append(d.Users, user)
		return nil
	})
	if err != nil {
		return db.User{}, err
	}
	return user.Public(), nil
}

// Login checks the credentials and returns the account without its hash.
func (s *Service) Login(email, password string) (db.User, error) {
	var (
		user  db.User
		found bool
	)
	s.store.View(func(d *db.Database) {
		if u := d.FindUserByEmail(email); u != nil {
			user, found = *u, true
		}
	})
	if !found || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return db.User{}, apperr.Unauthorized("invalid credentials")
	}
	return user.Public(), nil
}

// IssueToken signs an HS256 session token for u.
func (s *Service) IssueToken(u db.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
		"jti":     uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GetUser returns the public view of user id.
func (s *Service) GetUser(id string) (db.User, error) {
	var (
		user  db.User
		found bool
	)
	s.store.View(func(d *db.Database) {
		if u := d.FindUser(id); u != nil {
			user, found = u.Public(), true
		}
	})
	if !found {
		return db.User{}, apperr.NotFound("user", id)
	}
	return user, nil
}
