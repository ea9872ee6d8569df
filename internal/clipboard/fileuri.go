package clipboard

import (
	"net/url"
	"strings"
)

const fileURIScheme = "file://"

// FileURIToPath converts a file:// URI from the clipboard transport
// format into a plain filesystem path, percent-decoding as needed.
// Non-URI input is returned unchanged.
func FileURIToPath(uri string) string {
	if !strings.HasPrefix(uri, fileURIScheme) {
		return uri
	}
	trimmed := strings.TrimPrefix(uri, fileURIScheme)
	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		return trimmed
	}
	return decoded
}

// PathToFileURI converts a plain filesystem path back into the
// platform's file-reference form for writing to the clipboard.
func PathToFileURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}
