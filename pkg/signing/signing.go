package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Actions embeddable in a link token.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// Sentinel errors returned by Parse.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// LinkSigner creates and validates the signed action tokens embedded in
// coverage request emails.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewLinkSigner constructs a signer with the provided secret and TTL.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &LinkSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate returns a signed token binding the coverage request to one action.
func (s *LinkSigner) Generate(coverageID, action string) (string, time.Time, error) {
	if coverageID == "" || action == "" {
		return "", time.Time{}, fmt.Errorf("coverageID and action required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedAction := base64.RawURLEncoding.EncodeToString([]byte(action))
	payload := fmt.Sprintf("%s|%d|%s", coverageID, expiresAt.Unix(), encodedAction)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{coverageID, fmt.Sprintf("%d", expiresAt.Unix()), encodedAction, signature}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata.
func (s *LinkSigner) Parse(token string) (coverageID, action string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("%w: bad format", ErrInvalidToken)
	}
	coverageID = parts[0]
	ts := parts[1]
	encodedAction := parts[2]
	signature := parts[3]

	rawAction, err := base64.RawURLEncoding.DecodeString(encodedAction)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("%w: decode action: %v", ErrInvalidToken, err)
	}

	expUnix, err := parseUnix(ts)
	if err != nil {
		return "", "", time.Time{}, err
	}
	expiresAt = time.Unix(expUnix, 0)

	payload := fmt.Sprintf("%s|%s|%s", coverageID, ts, encodedAction)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("%w: bad signature", ErrInvalidToken)
	}
	if time.Now().After(expiresAt) {
		return "", "", time.Time{}, ErrExpiredToken
	}
	return coverageID, string(rawAction), expiresAt, nil
}

func parseUnix(raw string) (int64, error) {
	var ts int64
	_, err := fmt.Sscanf(raw, "%d", &ts)
	if err != nil {
		return 0, fmt.Errorf("%w: bad timestamp", ErrInvalidToken)
	}
	return ts, nil
}
