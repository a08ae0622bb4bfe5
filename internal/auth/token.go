// Package auth issues and verifies the signed channel-identity claims that
// gate every permission write.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reactroom/reactroom/internal/youtube"
)

// ClaimTTL is how long an issued claim stays valid.
const ClaimTTL = time.Hour

const signingKeyBytes = 32

// ErrInvalidToken means the claim is malformed, carries a bad signature, or
// has expired.
var ErrInvalidToken = errors.New("failed to verify token")

// SigningKey is the process-wide symmetric key. It is generated once at
// startup and never persisted, so a restart invalidates all outstanding
// claims.
type SigningKey []byte

// NewSigningKey generates a fresh random signing key.
func NewSigningKey() (SigningKey, error) {
	key := make([]byte, signingKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}

type channelClaims struct {
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	CustomURL    string `json:"custom_url,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies channel-identity claims with a single injected key.
type Codec struct {
	key SigningKey
	ttl time.Duration
	now func() time.Time
}

// NewCodec creates a codec around the process signing key.
func NewCodec(key SigningKey) *Codec {
	return &Codec{key: key, ttl: ClaimTTL, now: time.Now}
}

// Issue signs a claim embedding the identity, valid for ClaimTTL.
func (c *Codec) Issue(identity youtube.ChannelIdentity) (string, time.Time, error) {
	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, channelClaims{
		ChannelID:    identity.ChannelID,
		ChannelTitle: identity.ChannelTitle,
		CustomURL:    identity.CustomURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign claim: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Possession of a valid claim is the sole authorization to write that
// channel's record.
func (c *Codec) Verify(tokenString string) (youtube.ChannelIdentity, error) {
	var claims channelClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return youtube.ChannelIdentity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return youtube.ChannelIdentity{}, ErrInvalidToken
	}
	return youtube.ChannelIdentity{
		ChannelID:    claims.ChannelID,
		ChannelTitle: claims.ChannelTitle,
		CustomURL:    claims.CustomURL,
	}, nil
}
