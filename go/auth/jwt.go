package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by bearer tokens the host layer mints for principals.
type Claims struct {
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
	jwt.RegisteredClaims
}

// SignToken mints an HS256 bearer token for the principal.
func SignToken(secret []byte, p Principal, ttl time.Duration) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	var now = time.Now()
	var token = jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:       string(p.Role),
		EmployeeID: p.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and verifies a bearer token into a Principal.
func VerifyToken(secret []byte, raw string) (Principal, error) {
	var claims Claims
	var _, err = jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, fmt.Errorf("verifying token: %w", err)
	}

	var p = Principal{
		UserID:     claims.Subject,
		Role:       Role(claims.Role),
		EmployeeID: claims.EmployeeID,
	}
	if err = p.Validate(); err != nil {
		return Principal{}, err
	}
	return p, nil
}
