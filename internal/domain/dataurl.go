package domain

import (
	"regexp"
	"strings"
)

// MaxPhotoBytes caps the accepted selfie payload at roughly 7 MiB of encoded
// data URL, which corresponds to an image of about 5 MB on disk.
const MaxPhotoBytes = 7 * 1024 * 1024

var dataURLHeader = regexp.MustCompile(`^data:([^;]+);base64$`)

// DataURL is a parsed `data:<mime>;base64,<payload>` string.
type DataURL struct {
	MimeType string
	Data     string
}

// ParseDataURL splits a data URL into its mime type and base64 payload.
// The header must match `data:<mime>;base64` exactly; the payload itself is
// passed through unverified, matching what the upstream APIs accept.
func ParseDataURL(raw string) (*DataURL, error) {
	segments := strings.SplitN(raw, ",", 2)
	if len(segments) != 2 {
		return nil, E(KindValidation, "Invalid data URL supplied for photo")
	}
	m := dataURLHeader.FindStringSubmatch(segments[0])
	if m == nil {
		return nil, E(KindValidation, "Invalid data URL supplied for photo")
	}
	return &DataURL{MimeType: m[1], Data: segments[1]}, nil
}
