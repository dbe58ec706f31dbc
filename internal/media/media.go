// Package media builds upload.wikimedia.org URLs for files referenced from
// wiki markup. The host lays files out under a two-level directory derived
// from the MD5 of the normalized file name, so the derivation here must stay
// bit-for-bit identical to the host's.
package media

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	BaseURL = "http://upload.wikimedia.org/wikipedia/commons/"

	// DefaultThumbWidth is the pixel width requested for image thumbnails.
	DefaultThumbWidth = 600
)

// Normalize returns the canonical file name: first character upper-cased and
// spaces replaced by underscores.
func Normalize(filename string) string {
	if filename == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(filename)
	name := string(unicode.ToTitle(r)) + filename[size:]
	return strings.ReplaceAll(name, " ", "_")
}

// HashPath returns the "a/ab" directory prefix for filename.
func HashPath(filename string) string {
	sum := md5.Sum([]byte(Normalize(filename)))
	digest := hex.EncodeToString(sum[:])
	return digest[0:1] + "/" + digest[0:2]
}

// URL returns the full-size download URL for filename.
func URL(filename string) string {
	if filename == "" {
		return ""
	}
	return BaseURL + HashPath(filename) + "/" + Normalize(filename)
}

// ThumbURL returns the URL of a thumbnail of filename scaled to width pixels.
func ThumbURL(filename string, width int) string {
	if filename == "" {
		return ""
	}
	name := Normalize(filename)
	return BaseURL + "thumb/" + HashPath(filename) + "/" + name + "/" + strconv.Itoa(width) + "px-" + name
}
