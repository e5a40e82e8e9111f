// Package imagekit builds ImageKit delivery URLs with path transformations.
package imagekit

import (
	"strconv"
	"strings"
)

// Transformation is one transformation step. Zero values are omitted.
type Transformation struct {
	Width   int
	Height  int
	Quality int
	Format  string
	Effect  string
	Blur    int

	AIRemoveBackground bool
	AIUpscale          bool
	AIDropShadow       bool
}

func (t Transformation) encode() string {
	var params []string
	if t.Width > 0 {
		params = append(params, "w-"+strconv.Itoa(t.Width))
	}
	if t.Height > 0 {
		params = append(params, "h-"+strconv.Itoa(t.Height))
	}
	if t.Quality > 0 {
		params = append(params, "q-"+strconv.Itoa(t.Quality))
	}
	if t.Format != "" {
		params = append(params, "f-"+t.Format)
	}
	if t.Effect != "" {
		params = append(params, "e-"+t.Effect)
	}
	if t.Blur > 0 {
		params = append(params, "bl-"+strconv.Itoa(t.Blur))
	}
	if t.AIRemoveBackground {
		params = append(params, "e-bgremove")
	}
	if t.AIUpscale {
		params = append(params, "e-upscale")
	}
	if t.AIDropShadow {
		params = append(params, "e-dropshadow")
	}
	return strings.Join(params, ",")
}

// URL joins an endpoint and an asset path, applying the transformation chain
// as a `tr:` path segment. Multiple steps are chained with `:` so they apply
// in order.
func URL(endpoint, path string, steps ...Transformation) string {
	endpoint = strings.TrimRight(endpoint, "/")
	path = strings.TrimLeft(path, "/")

	var encoded []string
	for _, step := range steps {
		if s := step.encode(); s != "" {
			encoded = append(encoded, s)
		}
	}
	if len(encoded) == 0 {
		return endpoint + "/" + path
	}
	return endpoint + "/tr:" + strings.Join(encoded, ":") + "/" + path
}
