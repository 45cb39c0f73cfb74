package optimizer

import (
	"fmt"
	"strings"

	"mindscape/config"
)

// Snippet returns a next.config.js images block matching the generated
// widths and formats, ready to paste into the site configuration.
func Snippet(cfg *config.Config) string {
	var b strings.Builder

	fmt.Fprintln(&b, "// next.config.js")
	fmt.Fprintln(&b, "module.exports = {")
	fmt.Fprintln(&b, "  images: {")
	fmt.Fprintf(&b, "    deviceSizes: [%s],\n", joinInts(cfg.Widths))
	fmt.Fprintf(&b, "    imageSizes: [%s],\n", joinInts(cfg.Snippet.ImageSizes))
	fmt.Fprintf(&b, "    formats: [%s],\n", mimeList(cfg.Formats))
	fmt.Fprintf(&b, "    minimumCacheTTL: %d,\n", cfg.Snippet.MinimumCacheTTL)
	fmt.Fprintln(&b, "  },")
	fmt.Fprintln(&b, "}")

	return b.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

// Next.js serves the first format the browser accepts, so AVIF goes first
func mimeList(formats []string) string {
	var ordered []string
	for _, preferred := range []string{"avif", "webp"} {
		for _, f := range formats {
			if f == preferred {
				ordered = append(ordered, fmt.Sprintf("'image/%s'", f))
			}
		}
	}
	return strings.Join(ordered, ", ")
}
