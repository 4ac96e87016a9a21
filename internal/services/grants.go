package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rohits-web03/dropvault/internal/common"
)

const grantAudience = "delivery-download"

// GrantClaims bind a verified recipient to one delivery.
type GrantClaims struct {
	DeliveryID string `json:"deliveryId"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// GrantIssuer signs and checks short-lived access grants handed out after a
// successful access-code verification.
type GrantIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGrantIssuer(secret string, ttl time.Duration) *GrantIssuer {
	return &GrantIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (g *GrantIssuer) Issue(deliveryID uuid.UUID, email string) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(g.ttl)
	claims := GrantClaims{
		DeliveryID: deliveryID.String(),
		Email:      NormalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{grantAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access grant: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate accepts only an unexpired grant for this delivery and email.
func (g *GrantIssuer) Validate(token string, deliveryID uuid.UUID, email string) error {
	if token == "" {
		return fmt.Errorf("missing access grant: %w", common.ErrUnauthorized)
	}
	var claims GrantClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(grantAudience),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return fmt.Errorf("invalid access grant: %w", common.ErrUnauthorized)
	}
	if claims.DeliveryID != deliveryID.String() || claims.Email != NormalizeEmail(email) {
		return fmt.Errorf("access grant does not match: %w", common.ErrUnauthorized)
	}
	return nil
}
