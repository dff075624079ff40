package fetcher

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

const csvExt = ".csv"

// ResolveFilename picks the name a download is stored under: the explicit
// name, then the Content-Disposition filename, then the last URL path
// segment. The result is a bare file name that always ends in .csv.
func ResolveFilename(explicit, disposition, rawURL string) string {
	name := explicit
	if name == "" {
		name = dispositionFilename(disposition)
	}
	if name == "" {
		name = urlBasename(rawURL)
	}

	name = sanitize(name)
	if name == "" {
		name = "download"
	}
	if !strings.HasSuffix(name, csvExt) {
		name += csvExt
	}
	return name
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	// Servers routinely send headers ParseMediaType rejects (unquoted spaces,
	// trailing semicolons), so fall back to a plain split.
	_, after, ok := strings.Cut(header, "filename=")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(after, ';'); i >= 0 {
		after = after[:i]
	}
	return strings.Trim(strings.TrimSpace(after), `"'`)
}

func urlBasename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// sanitize strips directory components so a server-supplied name cannot
// escape the output directory.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}
