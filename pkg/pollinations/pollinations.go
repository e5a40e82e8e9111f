// Package pollinations builds image URLs for the Pollinations service. The
// service renders on fetch, so constructing the URL is the whole integration;
// no request is issued from here.
package pollinations

import (
	"net/url"
	"strconv"
	"strings"
)

const baseURL = "https://image.pollinations.ai/prompt/"

// Options tune the rendered portrait. Zero values are omitted from the URL.
type Options struct {
	Width  int
	Height int
	Seed   int
	NoLogo bool
}

// PortraitURL returns the Pollinations image URL for the given prompt.
// An empty prompt yields an empty string.
func PortraitURL(prompt string, opts Options) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ""
	}

	query := url.Values{}
	if opts.Width > 0 {
		query.Set("width", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		query.Set("height", strconv.Itoa(opts.Height))
	}
	if opts.Seed > 0 {
		query.Set("seed", strconv.Itoa(opts.Seed))
	}
	if opts.NoLogo {
		query.Set("nologo", "true")
	}

	u := baseURL + url.PathEscape(prompt)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
