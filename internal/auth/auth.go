// Package auth verifies bearer tokens and resolves the owner id every task
// operation is scoped to.
package auth

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"todo-list/internal/config"
	"todo-list/internal/errors"
)

// clockSkew is tolerated on exp, nbf and iat checks.
const clockSkew = time.Minute

var (
	errMissingAuthorization = stderrors.New("missing authorization header")
	errBadAuthorization     = stderrors.New("bad auth header")
)

// Verifier validates JWTs signed either with a shared HS256 secret or with
// RS256 keys published at a JWKS URL.
type Verifier struct {
	secret   []byte
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
	parser   *jwt.Parser
	now      func() time.Time
}

// NewVerifier builds a verifier from the auth configuration. A JWKS URL
// takes precedence over the shared secret.
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, errors.NewInvalidInputError("auth.jwks_url", cfg.JWKSURL, err.Error())
		}
		return NewJWKSVerifier(jwks, cfg.Audience, cfg.Issuer), nil
	}
	if cfg.JWTSecret == "" {
		return nil, errors.NewInvalidInputError("auth.jwt_secret", "", "a JWT secret or JWKS URL is required")
	}
	return NewHS256Verifier([]byte(cfg.JWTSecret), cfg.Audience, cfg.Issuer), nil
}

// NewHS256Verifier accepts tokens signed with secret.
func NewHS256Verifier(secret []byte, audience, issuer string) *Verifier {
	return &Verifier{
		secret:   secret,
		audience: audience,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation()),
		now:      time.Now,
	}
}

// NewJWKSVerifier accepts RS256 tokens whose key is in jwks.
func NewJWKSVerifier(jwks *keyfunc.JWKS, audience, issuer string) *Verifier {
	return &Verifier{
		jwks:     jwks,
		audience: audience,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation()),
		now:      time.Now,
	}
}

// Close stops the JWKS refresh goroutine, if any.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// OwnerFromHeader resolves the owner from an Authorization header value.
func (v *Verifier) OwnerFromHeader(header string) (string, error) {
	token, err := BearerToken(header)
	if err != nil {
		return "", errors.NewUnauthorizedError(err.Error(), nil)
	}
	return v.OwnerFromToken(token)
}

// OwnerFromToken verifies token and returns its subject. The legacy userId
// claim is accepted when sub is absent.
func (v *Verifier) OwnerFromToken(token string) (string, error) {
	parsed, err := v.parser.Parse(token, v.keyFor)
	if err != nil {
		return "", errors.NewUnauthorizedError("invalid token", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.NewUnauthorizedError("invalid claims", nil)
	}

	now := v.now()
	if !claims.VerifyExpiresAt(now.Add(-clockSkew).Unix(), true) {
		return "", errors.NewUnauthorizedError("token expired", nil)
	}
	if !claims.VerifyNotBefore(now.Add(clockSkew).Unix(), false) {
		return "", errors.NewUnauthorizedError("token not valid yet", nil)
	}
	if !claims.VerifyIssuedAt(now.Add(clockSkew).Unix(), false) {
		return "", errors.NewUnauthorizedError("token used before issued", nil)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return "", errors.NewUnauthorizedError("invalid audience", nil)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return "", errors.NewUnauthorizedError("invalid issuer", nil)
	}

	for _, claim := range []string{"sub", "userId"} {
		if owner, ok := claims[claim].(string); ok && owner != "" {
			return owner, nil
		}
	}
	return "", errors.NewUnauthorizedError("missing sub", nil)
}

func (v *Verifier) keyFor(token *jwt.Token) (interface{}, error) {
	if v.jwks != nil {
		return v.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, stderrors.New("invalid signing method")
	}
	return v.secret, nil
}

// BearerToken extracts the token from "Bearer <token>".
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadAuthorization
	}
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}

// IssueToken signs an HS256 token for owner, valid for ttl from now.
func IssueToken(secret []byte, owner string, ttl time.Duration, audience, issuer string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": owner,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if audience != "" {
		claims["aud"] = audience
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
