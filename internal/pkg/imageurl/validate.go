// Package imageurl checks the image links admins attach to dishes.
package imageurl

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

var (
	ErrScheme    = errors.New("Image URL must start with https://, http:// or /assets/.")
	ErrExtension = errors.New("Only JPG, PNG, GIF, WEBP and AVIF images are supported.")
	ErrSVG       = errors.New("SVG images are not supported.")
)

// Validate returns the cleaned link. Empty input is allowed and means the
// dish has no picture.
func Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrScheme
	}
	switch {
	case u.Scheme == "https" || u.Scheme == "http":
		if u.Host == "" {
			return "", ErrScheme
		}
	case u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/assets/"):
	default:
		return "", ErrScheme
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if ext == ".svg" || ext == ".svgz" {
		return "", ErrSVG
	}
	if !allowedExt[ext] {
		return "", ErrExtension
	}
	return u.String(), nil
}
