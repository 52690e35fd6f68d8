package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned for tokens that are malformed or carry a bad signature.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// Grant is the content of a verified download token.
type Grant struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed export download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long generated tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration { return s.ttl }

// Generate returns a token of the form job.expiry.path.signature.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("jobID and relPath required")
	}
	if strings.Contains(jobID, ".") {
		return "", time.Time{}, fmt.Errorf("jobID must not contain dots")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{jobID, ts, encodedPath, s.sign(jobID, ts, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token. allowExpired skips the expiry check for cleanup routines.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (Grant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Grant{}, ErrInvalidToken
	}
	jobID, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(jobID, ts, encodedPath)), []byte(signature)) {
		return Grant{}, ErrInvalidToken
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return Grant{}, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Grant{}, ErrInvalidToken
	}

	grant := Grant{JobID: jobID, Path: string(rawPath), ExpiresAt: time.Unix(expUnix, 0)}
	if !allowExpired && s.now().After(grant.ExpiresAt) {
		return Grant{}, ErrTokenExpired
	}
	return grant, nil
}

func (s *SignedURLSigner) sign(jobID, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(jobID + "|" + ts + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
