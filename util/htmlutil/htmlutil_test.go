package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStripsDisallowedTags(t *testing.T) {
	out := SanitizeAndLinkify(`<b>bold</b> and <i>italic</i>`, "a")
	assert.Equal(t, "bold and italic", out)
}

func TestSanitizeKeepsAllowedAnchor(t *testing.T) {
	out := SanitizeAndLinkify(`<a href="http://example.com" onclick="evil()">x</a>`, "a")
	assert.Equal(t, `<a href="http://example.com">x</a>`, out)
}

func TestSanitizeEscapesText(t *testing.T) {
	out := SanitizeAndLinkify(`1 < 2 & 3 > 2`, "a")
	assert.NotContains(t, out, "< 2")
	assert.Contains(t, out, "&lt;")
}

func TestLinkifyBareURL(t *testing.T) {
	out := SanitizeAndLinkify("see https://example.com/x for details", "a")
	assert.Contains(t, out, `<a href="https://example.com/x">https://example.com/x</a>`)
}

func TestLinkifyWWWGetsScheme(t *testing.T) {
	out := SanitizeAndLinkify("visit www.example.com today", "a")
	assert.Contains(t, out, `<a href="http://www.example.com">www.example.com</a>`)
}

func TestNoLinkifyInsideAnchor(t *testing.T) {
	out := SanitizeAndLinkify(`<a href="http://a.com">www.b.com</a>`, "a")
	assert.Equal(t, `<a href="http://a.com">www.b.com</a>`, out)
}

func TestRewriteMentions(t *testing.T) {
	out := RewriteMentions("props to @bob and @carol.j for this", "http://example.com/user/")
	assert.Contains(t, out, `<a href="http://example.com/user/bob">@bob</a>`)
	assert.Contains(t, out, `<a href="http://example.com/user/carol.j">@carol.j</a>`)
}

func TestRewriteMentionsNoMatch(t *testing.T) {
	out := RewriteMentions("no mentions here", "http://example.com/user")
	assert.Equal(t, "no mentions here", out)
}

func TestScriptContentsNeverExecute(t *testing.T) {
	out := SanitizeAndLinkify(`<script>alert("x")</script>hello`, "a")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}
