package parser

import (
	"strings"

	"github.com/dgallion1/lexgest/internal/lexicon"
	"github.com/dgallion1/lexgest/internal/markup"
	"github.com/dgallion1/lexgest/internal/media"
)

const imagePrefix = "Image:"

// Images returns the pictures referenced anywhere in text, inline
// [[Image:...]] links first, then gallery lines starting with "Image:".
// Thumbnails are requested at thumbWidth pixels (media.DefaultThumbWidth when
// not positive).
func Images(text string, thumbWidth int) []lexicon.Image {
	if thumbWidth <= 0 {
		thumbWidth = media.DefaultThumbWidth
	}

	var images []lexicon.Image
	for _, sp := range markup.BalancedLinks(text, imagePrefix) {
		images = append(images, newImage(sp.Inner[len(imagePrefix):], thumbWidth))
	}
	for raw := range strings.Lines(text) {
		if ref, ok := strings.CutPrefix(strings.TrimSpace(raw), imagePrefix); ok {
			images = append(images, newImage(ref, thumbWidth))
		}
	}
	return images
}

// newImage builds an Image from "file.jpg|opt|...|description".
func newImage(ref string, thumbWidth int) lexicon.Image {
	fields := markup.SplitFields(ref)
	filename := strings.TrimSpace(fields[0])
	return lexicon.Image{
		Filename:    filename,
		Description: strings.TrimSpace(fields[len(fields)-1]),
		URL:         media.URL(filename),
		ThumbURL:    media.ThumbURL(filename, thumbWidth),
	}
}
