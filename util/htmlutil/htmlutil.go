// Package htmlutil derives safe HTML from user-authored text: markup outside
// an allow-list is stripped, bare URLs are wrapped in hyperlinks and
// @username mentions can be rewritten into profile links.
package htmlutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	urlRe     = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>"']+`)
	mentionRe = regexp.MustCompile(`@(\w(?:[\w.]*\w)?)`)
)

// RewriteMentions replaces every @username token in text with a hyperlink to
// that user's profile under profileBase. The mentioned username is not
// checked for existence, so typos produce dead links.
func RewriteMentions(text, profileBase string) string {
	base := strings.TrimSuffix(profileBase, "/")
	return mentionRe.ReplaceAllStringFunc(text, func(m string) string {
		username := m[1:]
		return `<a href="` + base + `/` + username + `">@` + username + `</a>`
	})
}

// SanitizeAndLinkify strips all tags outside allowedTags, escapes text
// content and wraps bare URLs outside anchors in hyperlinks. Anchor tags on
// the allow-list keep only their href and title attributes.
func SanitizeAndLinkify(value string, allowedTags ...string) string {
	allowed := make(map[string]bool, len(allowedTags))
	for _, tag := range allowedTags {
		allowed[strings.ToLower(tag)] = true
	}

	tokenizer := html.NewTokenizerFragment(strings.NewReader(value), "div")
	var out strings.Builder
	anchorDepth := 0

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := tokenizer.Token()
			if !allowed[tok.Data] {
				continue
			}
			writeTag(&out, tok, tt == html.SelfClosingTagToken)
			if tok.Data == "a" && tt == html.StartTagToken {
				anchorDepth++
			}
		case html.EndTagToken:
			tok := tokenizer.Token()
			if !allowed[tok.Data] {
				continue
			}
			out.WriteString("</" + tok.Data + ">")
			if tok.Data == "a" && anchorDepth > 0 {
				anchorDepth--
			}
		case html.TextToken:
			text := tokenizer.Token().Data
			if anchorDepth > 0 {
				// never linkify inside an existing anchor
				out.WriteString(html.EscapeString(text))
			} else {
				out.WriteString(linkify(text))
			}
		}
	}
	return out.String()
}

// writeTag renders an allowed tag, keeping only href and title attributes.
func writeTag(out *strings.Builder, tok html.Token, selfClosing bool) {
	out.WriteString("<" + tok.Data)
	for _, attr := range tok.Attr {
		if attr.Key != "href" && attr.Key != "title" {
			continue
		}
		out.WriteString(` ` + attr.Key + `="` + html.EscapeString(attr.Val) + `"`)
	}
	if selfClosing {
		out.WriteString("/>")
	} else {
		out.WriteString(">")
	}
}

// linkify escapes text and wraps bare URLs in hyperlinks.
func linkify(text string) string {
	var out strings.Builder
	last := 0
	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		out.WriteString(html.EscapeString(text[last:loc[0]]))
		raw := text[loc[0]:loc[1]]
		href := raw
		if strings.HasPrefix(strings.ToLower(raw), "www.") {
			href = "http://" + raw
		}
		out.WriteString(`<a href="` + html.EscapeString(href) + `">` + html.EscapeString(raw) + `</a>`)
		last = loc[1]
	}
	out.WriteString(html.EscapeString(text[last:]))
	return out.String()
}
