// Package textnorm turns rich-text entry bodies into plain text.
package textnorm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// blockTags break words apart when their boundaries are removed.
var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true, "td": true, "th": true,
	"section": true, "article": true, "hr": true, "img": true,
}

// skipTags carry no readable content.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
}

// Normalize strips markup from s and returns its textual content with
// whitespace collapsed to single spaces. Plain text passes through. Malformed
// markup is handled best-effort; Normalize never fails.
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way keep what was read.
			return collapse(b.String())
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && tt == html.StartTagToken {
				skipDepth++
				continue
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

// Excerpt normalizes s and truncates the result to at most max runes,
// cutting at a word boundary when one is close.
func Excerpt(s string, max int) string {
	text := Normalize(s)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}

// Truncate cuts already-normalized text to max runes without decoration.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}

// Counts returns the whitespace-delimited word count and rune count of the
// normalized form of s.
func Counts(s string) (words, chars int) {
	text := Normalize(s)
	if text == "" {
		return 0, 0
	}
	return len(strings.Fields(text)), utf8.RuneCountInString(text)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
