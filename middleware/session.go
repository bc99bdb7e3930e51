package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionHeader carries the signed cart session token both ways
const SessionHeader = "X-Cart-Session"

const sessionKey = "cartSession"

type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies cart session tokens
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for sessionID
func (s *SessionIssuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse returns the session id in token
func (s *SessionIssuer) Parse(tokenStr string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}

// CartSession resolves the caller's cart session. A missing or expired token
// starts a new session; a tampered token is rejected. The current token is
// always echoed in the response header.
func CartSession(issuer *SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessionID string
		if tokenStr := c.GetHeader(SessionHeader); tokenStr != "" {
			id, err := issuer.Parse(tokenStr)
			switch {
			case err == nil:
				sessionID = id
			case errors.Is(err, jwt.ErrTokenExpired):
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "Invalid cart session",
				})
				return
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		token, err := issuer.Issue(sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
			return
		}

		c.Set(sessionKey, sessionID)
		c.Header(SessionHeader, token)
		c.Next()
	}
}

// GetSessionID extracts the cart session id from context
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
