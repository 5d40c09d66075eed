package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// AvatarURL is the Gravatar image of email. Addresses without a Gravatar get
// the neutral silhouette.
func AvatarURL(email string, size int) string {
	if size <= 0 {
		size = 80
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=mp&s=" + strconv.Itoa(size)
}
