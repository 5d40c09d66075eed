package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageContent(t *testing.T) {
	in := `<h2>Allergens</h2><p onclick="x()">Peanuts</p><script>alert(1)</script>` +
		`<ul class="keep"><li>Fish sauce</li></ul><a href="javascript:evil()">x</a>`
	out := PageContent(in)

	assert.Contains(t, out, `<h2 class="page-heading">Allergens</h2>`)
	assert.Contains(t, out, `<ul class="keep">`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `class="page-link"`)
}

func TestAvatarURL(t *testing.T) {
	a := AvatarURL(" Somchai@Example.com ", 0)
	b := AvatarURL("somchai@example.com", 80)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "https://www.gravatar.com/avatar/"))
	assert.True(t, strings.HasSuffix(a, "?d=mp&s=80"))
}
