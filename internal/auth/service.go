package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongBoard   = errors.New("token is not valid for this board")
)

// Service issues and checks board session tokens. A token grants access to
// exactly one board: its subject is the board id.
type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewService(jwtSecret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Token is an issued board token.
type Token struct {
	Token     string    `json:"token"`
	BoardID   string    `json:"boardId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issue signs a token for boardID.
func (s *Service) Issue(boardID string) (*Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   boardID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Token: signed, BoardID: boardID, ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

// ValidateToken checks the signature and expiry and returns the board id.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Authorize checks that tokenString grants access to boardID.
func (s *Service) Authorize(tokenString, boardID string) error {
	sub, err := s.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	if sub != boardID {
		return ErrWrongBoard
	}
	return nil
}
