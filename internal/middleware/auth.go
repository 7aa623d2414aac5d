package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token claim values and transport.
const (
	TokenIssuer   = "postboard-api"
	TokenAudience = "postboard-client"
	TokenCookie   = "token"
	TokenTTL      = 7 * 24 * time.Hour
)

var errNoToken = errors.New("no token presented")

// TokenClaims is what the service needs from a validated access token.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 access token for userID.
func IssueToken(secret string, userID uint, now time.Time) (string, TokenClaims, error) {
	claims := TokenClaims{
		UserID:    userID,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(TokenTTL),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"jti": claims.JTI,
		"iat": now.Unix(),
		"exp": claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", TokenClaims{}, err
	}
	return signed, claims, nil
}

// TokenFromRequest reads a bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1], nil
		}
		return "", errors.New("invalid authorization header format")
	}
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie, nil
	}
	return "", errNoToken
}

// IsNoToken reports whether err means the request carried no credentials.
func IsNoToken(err error) bool {
	return errors.Is(err, errNoToken)
}

// ParseToken validates signature, expiry, issuer and audience and extracts
// the subject.
func ParseToken(secret, tokenString string) (TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return TokenClaims{}, fmt.Errorf("invalid or expired token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return TokenClaims{}, errors.New("invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return TokenClaims{}, errors.New("invalid user ID in token")
	}

	out := TokenClaims{UserID: uint(userID)}
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
