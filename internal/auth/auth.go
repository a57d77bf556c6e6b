// Package auth implements the operator login for the scheduler's control
// surface: a single configured account checked with bcrypt, hand-rolled
// HS256 session tokens, and a sliding-window limiter on failed logins.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many login attempts, please try again later")
)

// Config holds the operator credentials and token/limiter settings.
type Config struct {
	Username  string
	Password  string
	JWTSecret string
	TokenTTL  time.Duration

	// MaxLoginAttempts failures within LoginWindowSeconds lock an address
	// out until the window slides past its oldest failure.
	MaxLoginAttempts   int
	LoginWindowSeconds int
}

// Claims is the token payload.
type Claims struct {
	Sub string `json:"sub"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
}

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Auth validates operator logins and issues/validates session tokens. The
// configured password is bcrypt-hashed at construction; the plaintext is not
// retained.
type Auth struct {
	cfg          Config
	passwordHash []byte

	mu       sync.Mutex
	failures map[string][]time.Time // failed-login timestamps per client IP
}

func New(cfg Config) *Auth {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 5
	}
	if cfg.LoginWindowSeconds <= 0 {
		cfg.LoginWindowSeconds = 900
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Warn("JWT secret is shorter than 32 characters — this is insecure in production")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		// Essentially unreachable with valid input; fall back to a hash that
		// can never match so the server still starts but login always fails.
		slog.Error("Failed to hash operator password", "error", err)
		hash = []byte("$2a$10$INVALIDHASHXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX")
	}
	cfg.Password = ""

	return &Auth{
		cfg:          cfg,
		passwordHash: hash,
		failures:     make(map[string][]time.Time),
	}
}

// Authenticate checks the supplied credentials and returns a signed token on
// success. remoteAddr feeds the per-address login limiter.
func (a *Auth) Authenticate(username, password, remoteAddr string) (string, error) {
	ip := clientIP(remoteAddr)

	if a.lockedOut(ip) {
		slog.Warn("Login rate-limited", "ip", ip)
		return "", ErrRateLimited
	}

	// Compare both credentials unconditionally, each in constant time, so a
	// failure leaks neither which field was wrong nor whether the username
	// exists.
	userOK := constantTimeEqual(username, a.cfg.Username)
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil

	if !userOK || !passOK {
		a.recordFailure(ip)
		return "", ErrInvalidCredentials
	}

	a.clearFailures(ip)
	return a.CreateToken(username)
}

// CreateToken signs a fresh token for the given subject.
func (a *Auth) CreateToken(subject string) (string, error) {
	now := time.Now()
	return a.sign(Claims{
		Sub: subject,
		Iat: now.Unix(),
		Exp: now.Add(a.cfg.TokenTTL).Unix(),
	})
}

// ValidateToken verifies a token's signature, algorithm, and expiry,
// returning its claims when valid.
func (a *Auth) ValidateToken(tokenStr string) (*Claims, error) {
	if len(tokenStr) > 4096 {
		return nil, ErrInvalidToken
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	headerJSON, err := b64Decode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode header", ErrInvalidToken)
	}
	var header jwtHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to parse header", ErrInvalidToken)
	}
	// Only HS256 is ever issued; anything else is an algorithm-confusion
	// attempt.
	if header.Alg != "HS256" || header.Typ != "JWT" {
		return nil, fmt.Errorf("%w: unsupported header %q/%q", ErrInvalidToken, header.Alg, header.Typ)
	}

	expected := a.computeHMAC(parts[0] + "." + parts[1])
	if !signaturesEqual(expected, parts[2]) {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := b64Decode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode claims", ErrInvalidToken)
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims", ErrInvalidToken)
	}

	now := time.Now().Unix()
	if now > claims.Exp {
		return nil, ErrExpiredToken
	}
	// 60s of clock-skew tolerance on the issue time.
	if claims.Iat > now+60 {
		return nil, fmt.Errorf("%w: token issued in the future", ErrInvalidToken)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return &claims, nil
}

// RemainingLockout reports how long until the given address may attempt a
// login again; zero when it is not locked out.
func (a *Auth) RemainingLockout(remoteAddr string) time.Duration {
	ip := clientIP(remoteAddr)
	a.mu.Lock()
	defer a.mu.Unlock()

	ts := a.pruneLocked(ip)
	if len(ts) < a.cfg.MaxLoginAttempts {
		return 0
	}
	return time.Until(ts[0].Add(a.window()))
}

func (a *Auth) window() time.Duration {
	return time.Duration(a.cfg.LoginWindowSeconds) * time.Second
}

func (a *Auth) lockedOut(ip string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pruneLocked(ip)) >= a.cfg.MaxLoginAttempts
}

func (a *Auth) recordFailure(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[ip] = append(a.pruneLocked(ip), time.Now())
}

func (a *Auth) clearFailures(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.failures, ip)
}

// pruneLocked drops failure timestamps that have aged out of the window and
// returns what remains. Caller must hold mu.
func (a *Auth) pruneLocked(ip string) []time.Time {
	cutoff := time.Now().Add(-a.window())
	kept := a.failures[ip][:0]
	for _, t := range a.failures[ip] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(a.failures, ip)
		return nil
	}
	a.failures[ip] = kept
	return kept
}

func (a *Auth) sign(claims Claims) (string, error) {
	headerJSON, err := json.Marshal(jwtHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	signingInput := b64Encode(headerJSON) + "." + b64Encode(claimsJSON)
	return signingInput + "." + a.computeHMAC(signingInput), nil
}

func (a *Auth) computeHMAC(input string) string {
	mac := hmac.New(sha256.New, []byte(a.cfg.JWTSecret))
	mac.Write([]byte(input))
	return b64Encode(mac.Sum(nil))
}

// signaturesEqual compares two base64url-encoded signatures in constant
// time.
func signaturesEqual(x, y string) bool {
	xd, errX := b64Decode(x)
	yd, errY := b64Decode(y)
	if errX != nil || errY != nil {
		return false
	}
	return hmac.Equal(xd, yd)
}

// constantTimeEqual compares two strings without leaking their length or
// common-prefix length through timing; both sides are hashed first.
func constantTimeEqual(x, y string) bool {
	hx := sha256.Sum256([]byte(x))
	hy := sha256.Sum256([]byte(y))
	return hmac.Equal(hx[:], hy[:])
}

func b64Encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func b64Decode(s string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(s)
	}
	return data, err
}

// clientIP strips the port from a RemoteAddr, handling bracketed IPv6.
func clientIP(remoteAddr string) string {
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(remoteAddr, "[]")
	}
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}
	return remoteAddr
}
