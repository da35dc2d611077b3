package media

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vaseyai/reprompter/internal/types"
)

const (
	dataPrefix   = "data:"
	imagePrefix  = "data:image/"
	base64Marker = ";base64,"
)

var (
	// ErrNotImageDataURL is returned for strings that are not base64 image
	// data references.
	ErrNotImageDataURL = errors.New("not an image data reference")
	// ErrInvalidBase64 is returned when the payload cannot be decoded.
	ErrInvalidBase64 = errors.New("invalid base64 image payload")
)

// ParseDataURL splits "data:image/<type>;base64,<payload>" into the declared
// MIME type and the still-encoded payload.
func ParseDataURL(s string) (declared, payload string, err error) {
	if !strings.HasPrefix(s, imagePrefix) {
		return "", "", ErrNotImageDataURL
	}
	idx := strings.Index(s, base64Marker)
	if idx < 0 {
		return "", "", ErrNotImageDataURL
	}
	declared = s[len(dataPrefix):idx]
	if declared == "image/" || strings.ContainsAny(declared, ",;") {
		return "", "", ErrNotImageDataURL
	}
	return declared, s[idx+len(base64Marker):], nil
}

// EstimateDecodedSize approximates the decoded size of a base64 payload
// without decoding it.
func EstimateDecodedSize(payload string) int64 {
	return int64(len(payload)) * 3 / 4
}

// Decode parses and decodes an image data reference and sniffs the real
// type from its bytes.
func Decode(s string) (*types.Image, error) {
	declared, payload, err := ParseDataURL(s)
	if err != nil {
		return nil, err
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, ErrInvalidBase64
	}
	return &types.Image{
		Data:         data,
		DeclaredType: declared,
		MIMEType:     Sniff(data),
	}, nil
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrInvalidBase64
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	// Some clients strip padding.
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

// EncodeDataURL builds a data reference for raw image bytes using the
// sniffed type.
func EncodeDataURL(data []byte) string {
	return imagePrefix + strings.TrimPrefix(Sniff(data), "image/") + base64Marker + base64.StdEncoding.EncodeToString(data)
}

// Base64 returns the standard base64 encoding of the image bytes, the form
// every provider expects inside its JSON envelope.
func Base64(img *types.Image) string {
	return base64.StdEncoding.EncodeToString(img.Data)
}
