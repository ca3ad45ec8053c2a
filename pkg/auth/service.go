package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/profiles"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is lowered by tests to keep them fast.
var bcryptCost = 12

// TokenExpiry is how long a session token stays valid.
const TokenExpiry = 7 * 24 * time.Hour

// JWTClaims are the claims carried by a session token.
type JWTClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Service struct {
	db             *bun.DB
	jwtSecret      []byte
	profileService *profiles.Service
}

func NewService(db *bun.DB, jwtSecret string) *Service {
	return &Service{
		db:             db,
		jwtSecret:      []byte(jwtSecret),
		profileService: profiles.NewService(db),
	}
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	return count, errors.WithStack(err)
}

// Authenticate checks a username (case-insensitive) and password pair against
// the active users.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.activeUser(ctx, "u.username = ? COLLATE NOCASE", username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("Invalid username or password")
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, errcodes.Unauthorized("Invalid username or password")
	}

	return user, nil
}

// GetUserByID loads an active user with its role and permissions. Inactive or
// missing users return sql.ErrNoRows.
func (s *Service) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return s.activeUser(ctx, "u.id = ?", id)
}

func (s *Service) activeUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("Role").
		Relation("Role.Permissions").
		Where(where, arg).
		Where("u.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// GenerateToken signs a session token for user.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return signed, errors.WithStack(err)
}

// ValidateToken parses a session token. Only HS256 tokens with an expiry are
// accepted.
func (s *Service) ValidateToken(token string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return claims, nil
}

// CreateFirstAdmin creates the initial admin account and its profile. It only
// works while there are no users at all.
func (s *Service) CreateFirstAdmin(ctx context.Context, username string, email *string, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*models.User)(nil)).Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if count > 0 {
			return errcodes.Forbidden("Running setup again once it has been completed")
		}

		err = tx.NewSelect().
			Model((*models.Role)(nil)).
			Column("id").
			Where("name = ?", models.RoleAdmin).
			Scan(ctx, &user.RoleID)
		if err != nil {
			return errors.WithStack(err)
		}

		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err = s.profileService.CreateForUser(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s.GetUserByID(ctx, user.ID)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
