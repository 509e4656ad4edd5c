package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"hotorflop/internal/config"
	"hotorflop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// RevokedKey is the redis key marking a token id as revoked.
func RevokedKey(jti string) string {
	return "blacklist:" + jti
}

// IssueToken mints an HS256 access token for userID. Login flows live outside
// this service; this is used by the CLI and tests.
func IssueToken(c *config.Config, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    c.JWTIssuer,
		Audience:  jwt.ClaimStrings{c.JWTAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.JWTSecret))
}

// ParseToken verifies raw against the signing secret, issuer and audience in c.
func ParseToken(c *config.Config, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if c.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(c.JWTIssuer))
	}
	if c.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(c.JWTAudience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(c.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Revoke blacklists a token id until it would have expired anyway.
func Revoke(ctx context.Context, rdb *redis.Client, jti string, ttl time.Duration) error {
	if rdb == nil {
		return errors.New("redis client is nil")
	}
	return rdb.Set(ctx, RevokedKey(jti), 1, ttl).Err()
}

// AuthRequired enforces a valid bearer token. When rdb is set, revoked token ids are rejected.
func AuthRequired(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		claims, err := ParseToken(cfg, parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		if claims.ID != "" && rdb != nil {
			revoked, err := rdb.Exists(c.UserContext(), RevokedKey(claims.ID)).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, uint(userID)))

		return c.Next()
	}
}
