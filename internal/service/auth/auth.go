package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/cache"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
)

const (
	defaultAccessCookieName = "Bearer"
	accessCookieMaxAge      = 3600
	revokedTokenSet         = "tokens:revoked"
)

var validate = validator.New()

type Config struct {
	// Hasher to use during registration or password checks
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Environment controls the Secure flag of the issued cookie
	Environment string

	// Shared secret for time based one-time codes
	OTPSecret string

	// One-time code validity window. Defaults to 300s
	OTPPeriod time.Duration
}

// Auth service
// Coordinates credential store, cache and token issuer to implement
// signup, signin, signout, refresh and password reset flows
type AuthService struct {
	// Issuer of signed access and refresh tokens
	tokens *TokenIssuer

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Short lived state: one-time codes and the revoked token set
	cache cache.Cache

	// Repository to access long term data
	userRepo repository.UserRepo

	otp *otpGenerator

	accessCookieName string
	secureCookie     bool

	// Time source, replaceable in tests
	now func() time.Time
}

func NewService(cfg Config, tokens *TokenIssuer, c cache.Cache, userRepo repository.UserRepo) (*AuthService, error) {
	// Set default bcrypt hasher if not provided by caller
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if tokens == nil || c == nil || userRepo == nil {
		return nil, errors.New("token issuer, cache and user repo must not be nil")
	}

	if cfg.OTPSecret == "" {
		return nil, errors.New("otp secret must not be empty")
	}

	return &AuthService{
		tokens:           tokens,
		hasher:           hasher,
		cache:            c,
		userRepo:         userRepo,
		otp:              newOTPGenerator(cfg.OTPSecret, cfg.OTPPeriod),
		accessCookieName: defaultAccessCookieName,
		secureCookie:     cfg.Environment == "production",
		now:              time.Now,
	}, nil
}

// Signup creates a user with a hashed password
// Returns apperrors.ErrUserAlreadyExists if the email is taken
// The returned user carries no credential material
func (s *AuthService) Signup(ctx context.Context, email string, fullName string, password string) (models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, err
	}

	return user.Scrubbed(), nil
}

// Signin issues a fresh token pair and rotates the stored refresh token hash,
// implicitly invalidating any previously issued refresh token.
// Returns the pair and a serialized cookie directive for the access token
func (s *AuthService) Signin(ctx context.Context, email string, password string) (models.TokenPair, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.TokenPair{}, "", err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.TokenPair{}, "", err
		}
		return models.TokenPair{}, "", fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.TokenPair{}, "", apperrors.ErrUserNotFound
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return models.TokenPair{}, "", fmt.Errorf("token could not generated, sorry. %w", err)
	}

	refreshHash := hashToken(pair.Refresh.Value)
	if _, err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, &refreshHash); err != nil {
		return models.TokenPair{}, "", fmt.Errorf("error while storing refresh token hash. Err: %w", err)
	}

	return pair, s.accessCookie(pair.Access.Value).String(), nil
}

// Signout ends the user's session: clears the stored refresh token hash and
// adds the presented access token's id to the revoked set.
// Missing user or undecodable token surface as their own error kinds,
// anything else is reported as internal
func (s *AuthService) Signout(ctx context.Context, userID uuid.UUID, accessToken string) error {
	if accessToken == "" {
		return apperrors.ErrTokenNotFound
	}

	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return apperrors.ErrTokenNotFound
	}

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	// Safe to retry: both steps are idempotent
	if _, err := s.userRepo.UpdateRefreshTokenHash(ctx, userID, nil); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	if err := s.RevokeToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	return nil
}

// AccessFromRefresh issues a new access token for a valid refresh token.
// The refresh token must decode, belong to an existing user and match the
// stored hash. The refresh token itself is not rotated by this path
func (s *AuthService) AccessFromRefresh(ctx context.Context, refreshToken string) (models.IssuedToken, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return models.IssuedToken{}, apperrors.ErrTokenNotFound
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.IssuedToken{}, apperrors.ErrTokenNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.IssuedToken{}, err
		}
		return models.IssuedToken{}, fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	// Compare hashes, not plaintext: guards against forged or superseded
	// tokens even if they decode fine
	if user.RefreshTokenHash == nil || !hashEqual(hashToken(refreshToken), *user.RefreshTokenHash) {
		return models.IssuedToken{}, apperrors.ErrTokenNotFound
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return access, nil
}

// ForgotPassword generates a one-time code for the user and caches it with
// a fixed ttl. Any previously issued code is cleared first.
// Delivering the code to the user is the caller's responsibility
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	code, err := s.otp.Generate(user.ID, s.now())
	if err != nil {
		return "", fmt.Errorf("error while generating one-time code. Err: %w", err)
	}

	key := otpKey(user.ID)
	if err := s.cache.Del(ctx, key); err != nil {
		return "", fmt.Errorf("error while clearing previous one-time code. Err: %w", err)
	}

	if err := s.cache.Set(ctx, key, code, s.otpTTL()); err != nil {
		return "", fmt.Errorf("error while storing one-time code. Err: %w", err)
	}

	return code, nil
}

// ResetPassword verifies the one-time code and overwrites the password hash.
// The code must be valid by the time based generator AND match the cached
// value issued to this user; agreeing on one alone is not enough.
// A consumed code can not be used again
func (s *AuthService) ResetPassword(ctx context.Context, email string, code string, newPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}

	key := otpKey(user.ID)
	cached, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrKeyNotFound):
		return apperrors.ErrOTPInvalid
	case err != nil:
		return fmt.Errorf("error while reading one-time code. Err: %w", err)
	}

	if !s.otp.Validate(user.ID, code, s.now()) || subtle.ConstantTimeCompare([]byte(cached), []byte(code)) != 1 {
		return apperrors.ErrOTPInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	if _, err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("error while updating password hash. Err: %w", err)
	}

	// Consume the code only once the new password is stored, so a transient
	// store failure does not burn a still unused code
	if err := s.cache.Del(ctx, key); err != nil {
		return fmt.Errorf("error while consuming one-time code. Err: %w", err)
	}

	return nil
}

// RevokeToken adds token id to the revoked set
// Revocation is monotonic: there is no un-revoke
func (s *AuthService) RevokeToken(ctx context.Context, tokenID string) error {
	return s.cache.SAdd(ctx, revokedTokenSet, tokenID)
}

func (s *AuthService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.SIsMember(ctx, revokedTokenSet, tokenID)
}

// GetUserFromRequest authenticates a request: reads the access token from the
// Authorization header or the access cookie, validates it, rejects revoked
// token ids and loads the user
func (s *AuthService) GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error) {
	tokenString, err := s.ReadAccessToken(r)
	if err != nil {
		return models.User{}, err
	}

	claims, err := s.tokens.ParseAccess(tokenString)
	if err != nil {
		return models.User{}, apperrors.ErrTokenNotFound
	}

	revoked, err := s.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("error while checking token revocation. Err: %w", err)
	}
	if revoked {
		return models.User{}, apperrors.ErrTokenRevoked
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.User{}, apperrors.ErrTokenNotFound
	}

	return s.userRepo.GetUserByID(ctx, userID)
}

// ReadAccessToken extracts the raw access token from a request
func (s *AuthService) ReadAccessToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return "", apperrors.ErrTokenNotFound
		}
		return token, nil
	}

	cookie, err := r.Cookie(s.accessCookieName)
	if err != nil {
		return "", apperrors.ErrTokenNotFound
	}

	return cookie.Value, nil
}

// SetTokens writes the access cookie and Authorization header to the response
func (s *AuthService) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, s.accessCookie(pair.Access.Value))
	w.Header().Set("Authorization", "Bearer "+pair.Access.Value)
}

func (s *AuthService) accessCookie(accessToken string) *http.Cookie {
	return &http.Cookie{
		Name:     s.accessCookieName,
		Value:    accessToken,
		MaxAge:   accessCookieMaxAge,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *AuthService) otpTTL() time.Duration {
	return time.Duration(s.otp.period) * time.Second
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validate.Var(email, "required,email"); err != nil {
		return "", apperrors.ErrEmailInvalid
	}

	return email, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func otpKey(userID uuid.UUID) string {
	return userID.String() + ":otp"
}
