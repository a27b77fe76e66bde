package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/justinabrahms/chess3d/internal/chess"
)

const issuerName = "chess3d"

var (
	ErrInvalidToken = errors.New("invalid seat token")
	ErrWrongSeat    = errors.New("seat token does not match this game or side")
)

// SeatClaims binds a bearer to one side of one game.
type SeatClaims struct {
	GameID string      `json:"gid"`
	Color  chess.Color `json:"color"`
	jwt.RegisteredClaims
}

// Issuer signs and checks HS256 seat tokens.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an issuer. An empty key is replaced with 32 random bytes,
// which means tokens do not survive a restart.
func NewIssuer(key string, ttl time.Duration) (*Issuer, error) {
	secret := []byte(key)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}
	return &Issuer{key: secret, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for color's seat in gameID.
func (i *Issuer) Issue(gameID string, color chess.Color) (string, error) {
	now := i.now()
	claims := SeatClaims{
		GameID: gameID,
		Color:  color,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   gameID + "/" + color.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks its signature, issuer and expiry.
func (i *Issuer) Verify(tokenString string) (*SeatClaims, error) {
	var claims SeatClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}

// Authorize verifies the token and checks that it grants color's seat in
// gameID.
func (i *Issuer) Authorize(tokenString, gameID string, color chess.Color) error {
	claims, err := i.Verify(tokenString)
	if err != nil {
		return err
	}
	if claims.GameID != gameID || claims.Color != color {
		return ErrWrongSeat
	}
	return nil
}
