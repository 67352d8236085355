package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nursery/internal/apperrors"
	"nursery/internal/models"
	"nursery/internal/repositories"
	"nursery/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the sign-up and sign-in request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	sessions  *session.Manager
	jwtSecret []byte
	tokenTTL  time.Duration // Duration for which JWT is valid
	validate  *validator.Validate
	log       *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessions *session.Manager, jwtSecret string, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		log:       named(log, "auth"),
	}
}

// SignUp registers a new user and stores a bcrypt hash of the password.
func (s *AuthService) SignUp(ctx context.Context, creds Credentials) (*models.User, error) {
	const op = "auth.SignUp"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if err := s.validate.Struct(creds); err != nil {
		return nil, apperrors.FromValidator(op, err)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, creds.Email); err == nil && existing != nil {
		return nil, apperrors.Auth(op, fmt.Sprintf("email '%s' already registered", creds.Email), apperrors.ErrDuplicate)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.DataStore(op, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: creds.Email, Password: string(hashedPassword)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Auth(op, fmt.Sprintf("email '%s' already registered", creds.Email), err)
		}
		return nil, apperrors.DataStore(op, err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// SignIn checks the credentials, opens a session and returns a signed token
// carrying the session id.
func (s *AuthService) SignIn(ctx context.Context, creds Credentials) (string, *session.Session, error) {
	const op = "auth.SignIn"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Unknown email and wrong password look the same to the caller.
		return "", nil, apperrors.Auth(op, "invalid credentials", nil)
	}
	if err != nil {
		return "", nil, apperrors.DataStore(op, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return "", nil, apperrors.Auth(op, "invalid credentials", nil)
	}

	sess, err := s.sessions.Open(ctx, session.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user, sess.ID)
	if err != nil {
		_ = s.sessions.Close(ctx, sess.ID)
		return "", nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID), attribute.String("session.id", sess.ID))
	return token, sess, nil
}

// SignOut closes the caller's session. Its token is rejected from then on.
func (s *AuthService) SignOut(ctx context.Context, id session.Identity) error {
	ctx, span := tracer.Start(ctx, "auth.SignOut")
	defer span.End()
	return s.sessions.Close(ctx, id.SessionID)
}

// Authenticate validates the token and resumes its session.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (session.Identity, *session.Session, error) {
	id, err := s.ValidateToken(tokenString)
	if err != nil {
		return session.Identity{}, nil, err
	}
	sess, err := s.sessions.Resume(ctx, id)
	if err != nil {
		return session.Identity{}, nil, err
	}
	return id, sess, nil
}

func (s *AuthService) issueToken(user *models.User, sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"sid":     sessionID,
		"exp":     now.Add(s.tokenTTL).Unix(), // Token expiration time
		"iat":     now.Unix(),                 // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (session.Identity, error) {
	const op = "auth.ValidateToken"
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return session.Identity{}, apperrors.Auth(op, "invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return session.Identity{}, apperrors.Auth(op, "invalid or expired token", nil)
	}
	id := session.Identity{
		UserID:    claimString(claims, "user_id"),
		Email:     claimString(claims, "email"),
		SessionID: claimString(claims, "sid"),
	}
	if id.UserID == "" || id.SessionID == "" {
		return session.Identity{}, apperrors.Auth(op, "token is missing required claims", nil)
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
