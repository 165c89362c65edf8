package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/khanghh/docportal/params"
)

type VerificationClaims struct {
	UserID  uint   `json:"uid"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies stateless email verification tokens.
type TokenIssuer struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func (t *TokenIssuer) Issue(userID uint, email string) (string, error) {
	issuedAt := t.now()
	claims := VerificationClaims{
		UserID:  userID,
		Email:   email,
		Purpose: params.VerificationTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (interface{}, error) {
	return t.secret, nil
}

// Verify checks signature, purpose and expiry. For an expired but otherwise
// valid token the claims are returned together with ErrTokenExpired.
func (t *TokenIssuer) Verify(tokenStr string) (*VerificationClaims, error) {
	validMethods := jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})
	var claims VerificationClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, t.keyFunc,
		validMethods,
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		// only trust the claims of an expired token if the signature holds
		var expired VerificationClaims
		if _, err := jwt.ParseWithClaims(tokenStr, &expired, t.keyFunc, validMethods, jwt.WithoutClaimsValidation()); err != nil {
			return nil, ErrTokenInvalid
		}
		if expired.Purpose != params.VerificationTokenPurpose {
			return nil, ErrTokenInvalid
		}
		return &expired, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.Purpose != params.VerificationTokenPurpose || claims.UserID == 0 || claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

func NewTokenIssuer(secret string, expiresIn time.Duration) *TokenIssuer {
	if expiresIn <= 0 {
		expiresIn = params.VerificationTokenExpiration
	}
	return &TokenIssuer{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}
