// Package media detects image types and handles inline image data references.
package media

import "bytes"

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEGIF  = "image/gif"
	MIMEWEBP = "image/webp"
)

// SniffLen is the number of leading bytes Sniff needs to test every signature.
const SniffLen = 12

var (
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigGIF  = []byte("GIF8")
	sigRIFF = []byte("RIFF")
	sigWEBP = []byte("WEBP")
)

// Sniff returns the image MIME type indicated by the leading bytes of b,
// defaulting to PNG when no signature matches. Client-declared types are
// never consulted.
func Sniff(b []byte) string {
	switch {
	case bytes.HasPrefix(b, sigPNG):
		return MIMEPNG
	case bytes.HasPrefix(b, sigJPEG):
		return MIMEJPEG
	case bytes.HasPrefix(b, sigGIF):
		return MIMEGIF
	case len(b) >= SniffLen && bytes.Equal(b[0:4], sigRIFF) && bytes.Equal(b[8:12], sigWEBP):
		return MIMEWEBP
	default:
		return MIMEPNG
	}
}
