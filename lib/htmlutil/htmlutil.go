package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText collapses a node's text the way a browser renders it: printable
// runes only, trimmed, inner whitespace runs flattened to one space.
func CleanText(node *html.Node) string {
	text := GetText(node)
	newStr := strings.Builder{}
	for _, c := range text {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	text = strings.Trim(newStr.String(), " \t\n")
	return innerWhitespace.ReplaceAllString(text, " ")
}

// Attr returns the value of the named attribute, or "".
func Attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// IsClickable reports whether a node looks activatable: an anchor, a button,
// or anything carrying an href or onclick attribute.
func IsClickable(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	if node.Data == "a" || node.Data == "button" {
		return true
	}
	return Attr(node, "href") != "" || Attr(node, "onclick") != ""
}
