package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/models"
)

// AdminTokenTTL is the lifetime of an admin JWT
const AdminTokenTTL = 24 * time.Hour

// ErrNoSigningSecret is returned when admin tokens are used without JWT_SECRET
var ErrNoSigningSecret = errors.New("jwt secret is not configured")

// IssueAdminToken signs an HS256 access token scoped to the admin panel
func IssueAdminToken(secret []byte, admin models.AdminUser, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSigningSecret
	}
	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"roles": admin.Roles,
		"scope": "admin",
		"typ":   "access",
		"iat":   now.Unix(),
		"exp":   now.Add(AdminTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAdminToken verifies signature, expiry and scope and returns the admin
func ParseAdminToken(secret []byte, tokenString string) (AuthAdmin, error) {
	if len(secret) == 0 {
		return AuthAdmin{}, ErrNoSigningSecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return AuthAdmin{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return AuthAdmin{}, errors.New("invalid token")
	}
	if scope, _ := claims["scope"].(string); scope != "admin" {
		return AuthAdmin{}, errors.New("token is not scoped to admin")
	}

	admin := AuthAdmin{}
	admin.ID, _ = claims["sub"].(string)
	admin.Email, _ = claims["email"].(string)
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				admin.Roles = append(admin.Roles, s)
			}
		}
	}
	return admin, nil
}

// AdminMiddleware only lets requests carrying a valid admin JWT through
func AdminMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "unauthorized"}`))
				return
			}
			admin, err := ParseAdminToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				zap.S().Warnw("admin token rejected",
					"url", r.URL.Path,
					"error", err)
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}
