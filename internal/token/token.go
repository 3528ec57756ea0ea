package token

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"setlist-scraper/internal/config"
	"setlist-scraper/internal/keystore"
)

// Validity is how long a minted token stays valid.
const Validity = time.Hour

var (
	ErrKeyRead  = errors.New("reading private key")
	ErrKeyParse = errors.New("parsing private key")
	ErrSigning  = errors.New("signing token")
)

// Claims is the developer-token claim set. Timestamps are milliseconds
// since the Unix epoch.
type Claims struct {
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewClaims builds claims for teamID issued at now.
func NewClaims(teamID string, now time.Time) Claims {
	iat := now.UnixMilli()
	return Claims{
		Issuer:    teamID,
		IssuedAt:  iat,
		ExpiresAt: iat + Validity.Milliseconds(),
	}
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.ExpiresAt)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.IssuedAt)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (c Claims) GetIssuer() (string, error) {
	return c.Issuer, nil
}

func (c Claims) GetSubject() (string, error) {
	return "", nil
}

func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

// Minter signs developer tokens with an ES256 private key.
type Minter struct {
	creds config.Credentials
	keys  keystore.Reader
	now   func() time.Time
}

// NewMinter creates a Minter that loads the key through keys.
func NewMinter(creds config.Credentials, keys keystore.Reader) *Minter {
	return &Minter{
		creds: creds,
		keys:  keys,
		now:   time.Now,
	}
}

// Mint reads the private key and returns a freshly signed token.
// Nothing is cached between calls.
func (m *Minter) Mint(ctx context.Context) (string, error) {
	pemData, err := m.keys.ReadKey(ctx, m.creds.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrKeyRead, m.creds.PrivateKeyPath, err)
	}

	key, err := ParsePrivateKey(pemData)
	if err != nil {
		return "", err
	}

	claims := NewClaims(m.creds.TeamID, m.now())
	signed, err := Sign(claims, m.creds.KeyID, key)
	if err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Debug().
		Str("kid", m.creds.KeyID).
		Str("iss", claims.Issuer).
		Time("expires", time.UnixMilli(claims.ExpiresAt)).
		Msg("Minted developer token")

	return signed, nil
}

// ParsePrivateKey parses a PEM encoded P-256 key in SEC 1 or PKCS #8 form.
func ParsePrivateKey(pemData []byte) (*ecdsa.PrivateKey, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyParse, err)
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: ES256 needs a P-256 key, got %s", ErrKeyParse, key.Curve.Params().Name)
	}
	return key, nil
}

// Sign serializes claims with an ES256 header carrying keyID.
func Sign(claims Claims, keyID string, key *ecdsa.PrivateKey) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = keyID

	signed, err := t.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token minted by Sign.
func Verify(tokenString string, pub *ecdsa.PublicKey) (*Claims, string, error) {
	var claims Claims
	t, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}), jwt.WithIssuedAt())
	if err != nil {
		return nil, "", err
	}

	kid, _ := t.Header["kid"].(string)
	return &claims, kid, nil
}
