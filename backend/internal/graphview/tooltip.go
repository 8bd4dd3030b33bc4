package graphview

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const tooltipOpen = `<div style="max-width: 300px; padding: 8px;">`

// excludedNodeKeys never appear in node tooltips
var excludedNodeKeys = map[string]bool{
	"elementId": true,
	"labels":    true,
}

// FormatKey turns a snake_case property name into a title, capitalising the
// first letter of every underscore-separated word.
func FormatKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NodeTooltip renders node properties as an HTML tooltip
func NodeTooltip(props map[string]any) string {
	return renderTooltip(props, excludedNodeKeys)
}

// EdgeTooltip renders relationship properties. Edges without properties get
// no tooltip at all.
func EdgeTooltip(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}
	return renderTooltip(props, nil)
}

func renderTooltip(props map[string]any, exclude map[string]bool) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		if !exclude[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		value, ok := displayValue(props[k])
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("<strong>%s</strong>: %s", html.EscapeString(FormatKey(k)), html.EscapeString(value)))
	}
	return tooltipOpen + strings.Join(lines, "<br>") + "</div>"
}

// displayValue renders one property as text. Null and empty values are skipped.
func displayValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if val == "" {
			return "", false
		}
		if items, ok := jsonList(val); ok {
			return strings.Join(items, ", "), true
		}
		return PlainText(val), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", "), true
	case []string:
		return strings.Join(val, ", "), true
	default:
		return fmt.Sprint(val), true
	}
}

// jsonList decodes contact-style fields stored as JSON array strings
func jsonList(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false
	}
	return items, true
}

// PlainText strips markup from rich-text values. Anything that does not look
// like HTML is returned unchanged.
func PlainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	// Block elements would otherwise run together.
	doc.Find("p, li, div, h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	doc.Find("br").ReplaceWithHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
