package authtoken

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Identity is what the API needs to know about the caller after verification.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	ExpiresAt time.Time
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Verifier struct {
	Secret string
	Issuer string
}

// Verify validates an HS256 bearer token. The subject must be the user's UUID.
func (v Verifier) Verify(tokenString string, now time.Time) (*Identity, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if v.Secret == "" {
		return nil, fmt.Errorf("missing jwt secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	claims := &Claims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(v.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(strings.TrimSpace(claims.Subject))
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	return &Identity{
		UserID:    userID,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue mints a token. Production tokens come from the account service; this is used by
// dev tooling and tests.
func (v Verifier) Issue(userID uuid.UUID, email, role string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    v.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.Secret))
}
