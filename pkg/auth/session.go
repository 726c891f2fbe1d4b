package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/xerrors"
)

const (
	UserCookie  = "torneo_uid"
	AdminCookie = "torneo_admin"

	userSessionTTL = 365 * 24 * time.Hour
	issuer         = "torneo"
)

var ErrInvalidSession = errors.New("invalid session")

type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies the cookies that carry a visitor's identity
// and an admin login.
type Sessions struct {
	secret   []byte
	adminTTL time.Duration
	secure   bool
	now      func() time.Time
}

func NewSessions(secret []byte, adminTTL time.Duration, secure bool) *Sessions {
	return &Sessions{secret: secret, adminTTL: adminTTL, secure: secure, now: time.Now}
}

func (s *Sessions) issue(subject string, admin bool, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", xerrors.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// IssueUser returns a token naming userID.
func (s *Sessions) IssueUser(userID string) (string, error) {
	return s.issue(userID, false, userSessionTTL)
}

// IssueAdmin returns a token granting the admin panel.
func (s *Sessions) IssueAdmin() (string, error) {
	return s.issue("admin", true, s.adminTTL)
}

func (s *Sessions) Parse(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Issuer != issuer {
		return nil, ErrInvalidSession
	}
	return &claims, nil
}

func (s *Sessions) SetUserCookie(c *gin.Context, token string) {
	s.setCookie(c, UserCookie, token, int(userSessionTTL.Seconds()))
}

func (s *Sessions) SetAdminCookie(c *gin.Context, token string) {
	s.setCookie(c, AdminCookie, token, int(s.adminTTL.Seconds()))
}

func (s *Sessions) ClearAdminCookie(c *gin.Context) {
	s.setCookie(c, AdminCookie, "", -1)
}

func (s *Sessions) setCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
