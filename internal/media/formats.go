package media

import (
	"net/http"
	"path/filepath"
	"strings"
)

// photoFormat ties a trip photo MIME type to its file extensions and the
// ffmpeg encoder that rewrites it.
type photoFormat struct {
	contentType string
	extensions  []string
	encoder     string
	quality     []string
}

var photoFormats = []photoFormat{
	{contentType: "image/jpeg", extensions: []string{".jpg", ".jpeg"}, encoder: "mjpeg", quality: []string{"-q:v", "3"}},
	{contentType: "image/png", extensions: []string{".png"}, encoder: "png", quality: []string{"-compression_level", "4"}},
	{contentType: "image/webp", extensions: []string{".webp"}, encoder: "libwebp", quality: []string{"-quality", "85"}},
}

// AllowedContentTypes lists the photo formats trips accept.
var AllowedContentTypes = func() []string {
	out := make([]string, len(photoFormats))
	for i, f := range photoFormats {
		out[i] = f.contentType
	}
	return out
}()

var mimeAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
}

func lookupFormat(contentType string) (photoFormat, bool) {
	for _, f := range photoFormats {
		if f.contentType == contentType {
			return f, true
		}
	}
	return photoFormat{}, false
}

// IsAllowed reports whether contentType is one of AllowedContentTypes.
func IsAllowed(contentType string) bool {
	_, ok := lookupFormat(contentType)
	return ok
}

// NormalizeContentType lowercases value, strips parameters and falls back to
// the file extension when value is empty or generic.
func NormalizeContentType(value, fileName string) string {
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(value)), ";")
	ct = strings.TrimSpace(ct)
	if alias, ok := mimeAliases[ct]; ok {
		return alias
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, f := range photoFormats {
		for _, e := range f.extensions {
			if e == ext {
				return f.contentType
			}
		}
	}
	return ct
}

// Sniff detects the content type from the leading bytes of data.
func Sniff(data []byte) string {
	return NormalizeContentType(http.DetectContentType(data), "")
}

// Extension returns the canonical file extension for an allowed content type,
// ".jpg" for anything else.
func Extension(contentType string) string {
	if f, ok := lookupFormat(contentType); ok {
		return f.extensions[0]
	}
	return ".jpg"
}
