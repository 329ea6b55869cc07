package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles de operador aceptados en el claim "role".
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleConsulta  = "consulta"
)

var (
	ErrEmptySecret  = errors.New("jwt: secret vacío")
	ErrUnknownRole  = errors.New("jwt: rol desconocido")
	ErrNoOperator   = errors.New("jwt: operador requerido")
	ErrInvalidToken = errors.New("jwt: token inválido")
)

// KnownRole reporta si role es uno de los roles de operador.
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleBodeguero, RoleConsulta:
		return true
	}
	return false
}

// Claims de un token de operador. El operador viaja en sub y cada token lleva su propio jti.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Operator devuelve el operador dueño del token.
func (c *Claims) Operator() string { return c.Subject }

// Signer emite y verifica tokens HS256 con un secreto y un emisor fijos.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewSigner falla si el secreto está vacío. issuer vacío desactiva la verificación del emisor.
func NewSigner(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue emite un token para operator con role y vigencia ttl.
func (s *Signer) Issue(operator, role string, ttl time.Duration) (string, *Claims, error) {
	if operator == "" {
		return "", nil, ErrNoOperator
	}
	if !KnownRole(role) {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("firmar token: %w", err)
	}
	return token, claims, nil
}

// Verify valida firma, vencimiento y emisor. No valida el rol: eso le toca a quien autoriza.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
