package utils

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType sniffs the media type from the leading bytes of data.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ResolveContentType prefers the declared type and falls back to sniffing
// when the client sent none or the generic octet-stream.
func ResolveContentType(declared string, data []byte) string {
	mediaType := mediaTypeOf(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		return mediaTypeOf(DetectContentType(data))
	}
	return mediaType
}

// IsImageContentType reports whether contentType is an image/* type.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(mediaTypeOf(contentType), "image/")
}

func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
