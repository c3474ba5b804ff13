package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/ctxutil"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, in LoginInput) (*types.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// ParseToken validates an access token and returns the request
	// identity middleware attaches to the context.
	ParseToken(tokenString string) (*ctxutil.RequestData, error)
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, secretKey string, accessTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		db:         db,
		log:        log.With("service", "AuthService"),
		users:      users,
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *types.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		if _, err := s.users.GetByUsername(dbc, username); err == nil {
			return apierr.Conflict("USERNAME_TAKEN", "username already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := s.users.GetByEmail(dbc, email); err == nil {
			return apierr.Conflict("EMAIL_TAKEN", "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		u := &types.User{
			ID:       uuid.New(),
			Username: username,
			Email:    email,
			Password: string(hash),
			IsActive: true,
		}
		row, err := s.users.Create(dbc, u)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered", "user_id", created.ID.String())
	return created, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*types.User, *TokenPair, error) {
	dbc := dbctx.Context{Ctx: ctx}

	u, err := s.users.GetByUsername(dbc, strings.TrimSpace(in.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apierr.Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}
	if err != nil {
		return nil, nil, err
	}
	if !u.IsActive {
		return nil, nil, apierr.New(http.StatusForbidden, "USER_DISABLED", errors.New("account disabled"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, nil, apierr.Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	pair, err := s.issueTokens(u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseClaims(refreshToken)
	if err != nil {
		return nil, err
	}
	if kind, _ := claims["kind"].(string); kind != "refresh" {
		return nil, apierr.Unauthorized("INVALID_TOKEN", "not a refresh token")
	}
	userID, err := subjectUUID(claims)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(dbctx.Context{Ctx: ctx}, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized("INVALID_TOKEN", "unknown user")
		}
		return nil, err
	}
	return s.issueTokens(userID)
}

func (s *authService) ParseToken(tokenString string) (*ctxutil.RequestData, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if kind, _ := claims["kind"].(string); kind != "access" {
		return nil, apierr.Unauthorized("INVALID_TOKEN", "not an access token")
	}
	userID, err := subjectUUID(claims)
	if err != nil {
		return nil, err
	}
	return &ctxutil.RequestData{UserID: userID}, nil
}

func (s *authService) issueTokens(userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()

	access, err := s.signToken(jwt.MapClaims{
		"sub":  userID.String(),
		"kind": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(jwt.MapClaims{
		"sub":  userID.String(),
		"kind": "refresh",
		"iat":  now.Unix(),
		"exp":  now.Add(s.refreshTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *authService) signToken(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

func (s *authService) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.Unauthorized("INVALID_TOKEN", "invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierr.Unauthorized("INVALID_TOKEN", "malformed claims")
	}
	return claims, nil
}

func subjectUUID(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apierr.Unauthorized("INVALID_TOKEN", "malformed subject")
	}
	return userID, nil
}
