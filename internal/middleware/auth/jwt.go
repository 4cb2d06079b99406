package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthUser is the caller identified by the bearer token
type AuthUser struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type contextKey string

const userContextKey contextKey = "authenticated_user"

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Logger    *zap.Logger
	SkipPaths []string // path prefixes served without a token
}

// userClaims is what the site's login service signs. sub is the numeric user id.
type userClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// authFailure is rendered as {"error", "code"} with 401
type authFailure struct {
	code    string
	message string
}

var (
	errMissingHeader = &authFailure{"MISSING_AUTH_HEADER", "Authorization header required"}
	errHeaderFormat  = &authFailure{"INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"}
	errInvalidToken  = &authFailure{"INVALID_TOKEN", "Invalid or expired token"}
	errNoSubject     = &authFailure{"INVALID_CLAIMS", "Token has no subject"}
	errBadSubject    = &authFailure{"INVALID_SUBJECT", "Token subject must be a user id"}
)

// JWTMiddleware validates HMAC-signed bearer tokens and stores the AuthUser
// in the request context
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(config.Secret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range config.SkipPaths {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			user, failure, err := authenticate(parser, keyFunc, c.Request().Header.Get("Authorization"))
			if failure != nil {
				fields := []zap.Field{zap.String("path", path), zap.String("code", failure.code)}
				if err != nil {
					fields = append(fields, zap.Error(err))
				}
				config.Logger.Warn("Request rejected by JWT middleware", fields...)
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": failure.message,
					"code":  failure.code,
				})
			}

			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), user)))
			c.Set("user_id", user.UserID)

			config.Logger.Debug("User authenticated",
				zap.Int64("user_id", user.UserID),
				zap.String("path", path))
			return next(c)
		}
	}
}

func authenticate(parser *jwt.Parser, keyFunc jwt.Keyfunc, header string) (*AuthUser, *authFailure, error) {
	if header == "" {
		return nil, errMissingHeader, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errHeaderFormat, nil
	}

	var claims userClaims
	if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
		return nil, errInvalidToken, err
	}

	if claims.Subject == "" {
		return nil, errNoSubject, nil
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errBadSubject, err
	}
	if userID <= 0 {
		return nil, errBadSubject, errors.New("non-positive user id")
	}

	return &AuthUser{
		UserID: userID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil, nil
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(c echo.Context) (*AuthUser, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*AuthUser)
	if !ok || user == nil {
		return nil, errors.New("no authenticated user found in context")
	}
	return user, nil
}

// RequireAuth returns the authenticated user, or a 401 HTTPError the handler
// should return as is
func RequireAuth(c echo.Context) (*AuthUser, error) {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
			"error": "Authentication required",
			"code":  "AUTH_REQUIRED",
		})
	}
	return user, nil
}

// WithUser stores user in ctx the way JWTMiddleware does
func WithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
