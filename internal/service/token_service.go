package service

import (
	"fmt"

	"github.com/eliazzo-oli/kixico-pay-73-sub000/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT.
// Tokens are issued by the platform auth service; this side only
// validates them.
type JWTTokenService struct {
	secret []byte
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing subject claim")
	}

	sellerID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid seller ID in token: %w", err)
	}

	roleStr, _ := claims["role"].(string)
	role := ports.Role(roleStr)
	if role != ports.RoleSeller && role != ports.RoleOperator {
		return nil, fmt.Errorf("unknown role claim %q", roleStr)
	}

	return &ports.TokenClaims{
		SellerID: sellerID,
		Role:     role,
	}, nil
}
