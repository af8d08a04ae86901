package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultUploadTTL = 10 * time.Minute
	DefaultMaxSize   = 10 << 20
	keyPrefix        = "receipts"
)

var allowedTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// AllowedType reports whether receipts may have this MIME type.
func AllowedType(mimeType string) bool {
	_, ok := allowedTypes[mimeType]
	return ok
}

// UploadClaims bind a signed upload URL to one key, type and size limit.
type UploadClaims struct {
	Key       string `json:"key"`
	CompanyID int64  `json:"companyId"`
	MimeType  string `json:"mimeType"`
	MaxSize   int64  `json:"maxSize"`
	jwt.RegisteredClaims
}

type SignedUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Signer struct {
	secret        []byte
	ttl           time.Duration
	maxSize       int64
	publicBaseURL string
	now           func() time.Time
}

func NewSigner(secret string, ttl time.Duration, maxSize int64, publicBaseURL string) *Signer {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Signer{
		secret:        []byte(secret),
		ttl:           ttl,
		maxSize:       maxSize,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func (s *Signer) MaxSize() int64 {
	return s.maxSize
}

// Sign issues a fresh random key under the company's prefix and a URL that
// allows one PUT of at most size bytes of mimeType before the TTL runs out.
// The upload handler refuses a second PUT once the key holds an object.
func (s *Signer) Sign(companyID int64, mimeType string, size int64) (*SignedUpload, error) {
	ext, ok := allowedTypes[mimeType]
	if !ok {
		return nil, internal.NewValidationFieldError("mimeType",
			"mimeType must be one of: application/pdf image/jpeg image/png image/webp", internal.ErrCodeUploadRejected)
	}
	if size <= 0 || size > s.maxSize {
		return nil, internal.NewValidationFieldError("size",
			fmt.Sprintf("size must be between 1 and %d bytes", s.maxSize), internal.ErrCodeUploadRejected)
	}

	key := fmt.Sprintf("%s/%d/%s%s", keyPrefix, companyID, uuid.NewString(), ext)
	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &UploadClaims{
		Key:       key,
		CompanyID: companyID,
		MimeType:  mimeType,
		MaxSize:   size,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "upload",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, internal.NewInternalError("failed to sign upload", err)
	}

	return &SignedUpload{
		Key:       key,
		UploadURL: fmt.Sprintf("%s/api/uploads/%s?token=%s", s.publicBaseURL, key, url.QueryEscape(signed)),
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks token and that it was issued for key.
func (s *Signer) Verify(token, key string) (*UploadClaims, error) {
	claims := &UploadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithSubject("upload"))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}
	if !parsed.Valid || claims.Key != key {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// OwnsKey reports whether key was issued under companyID's prefix.
func OwnsKey(companyID int64, key string) bool {
	prefix := fmt.Sprintf("%s/%d/", keyPrefix, companyID)
	rest, ok := strings.CutPrefix(key, prefix)
	return ok && rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}
