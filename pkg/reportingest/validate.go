package reportingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// canonicalExtensions maps each allowed image MIME type to its canonical
// filesystem extension.
var canonicalExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Validator checks uploaded artifacts before any side effect is performed.
// It is pure: no I/O, no state mutation.
type Validator struct {
	checkMediaType   bool
	checkFingerprint bool
}

// ValidatorOption represents a functional option for configuring the validator
type ValidatorOption func(*Validator)

// WithoutMediaTypeCheck disables the MIME allow-list and extension checks
func WithoutMediaTypeCheck() ValidatorOption {
	return func(v *Validator) {
		v.checkMediaType = false
	}
}

// WithoutFingerprintCheck disables verification of client-reported digests
func WithoutFingerprintCheck() ValidatorOption {
	return func(v *Validator) {
		v.checkFingerprint = false
	}
}

// NewValidator creates a validator with both checks enabled
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		checkMediaType:   true,
		checkFingerprint: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the declared MIME type against the allow-list, the
// filename against the canonical extension, and, when a client-reported
// fingerprint is present, compares it with the computed sha256 digest.
// It returns the request-scoped artifact with computed fields populated.
func (v *Validator) Validate(content []byte, mimeType, fileName, reportedFingerprint string) (*UploadArtifact, error) {
	artifact := &UploadArtifact{
		Content:     content,
		MimeType:    mimeType,
		FileName:    fileName,
		Fingerprint: Fingerprint(content),
	}

	if v.checkMediaType {
		ext, ok := canonicalExtensions[mimeType]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mimeType)
		}
		if !strings.HasSuffix(fileName, ext) {
			return nil, fmt.Errorf("%w: %s does not end with %s", ErrExtensionMismatch, fileName, ext)
		}
		artifact.Extension = ext
	}

	if v.checkFingerprint && reportedFingerprint != "" {
		if artifact.Fingerprint != reportedFingerprint {
			return nil, ErrFingerprintMismatch
		}
	}

	return artifact, nil
}

// Fingerprint computes the sha256 hex digest of content.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// AllowedMediaTypes returns the MIME types accepted by the validator.
func AllowedMediaTypes() []string {
	types := make([]string, 0, len(canonicalExtensions))
	for t := range canonicalExtensions {
		types = append(types, t)
	}
	return types
}
