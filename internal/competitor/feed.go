package competitor

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

// newestFeedItem parses a feed and returns the title and plain text of its
// most recently published item. Items without text are skipped. Undated
// items rank below dated ones, keeping feed order among themselves.
func newestFeedItem(body []byte) (string, string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parsing feed: %w", err)
	}

	var (
		best     *gofeed.Item
		bestText string
		bestAt   time.Time
	)
	for _, item := range feed.Items {
		text := itemText(item)
		if text == "" {
			continue
		}
		at := itemTime(item)
		if best == nil || at.After(bestAt) {
			best, bestText, bestAt = item, text, at
		}
	}
	if best == nil {
		return "", "", ErrNoContent
	}
	return best.Title, bestText, nil
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// itemText prefers the full content over the summary.
func itemText(item *gofeed.Item) string {
	if text := cleanText(htmlToText(item.Content)); text != "" {
		return text
	}
	return cleanText(htmlToText(item.Description))
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true, "tr": true,
}

// htmlToText returns the text of an HTML fragment with block elements on
// their own lines. Script and style contents are dropped.
func htmlToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteByte('\n')
		}
	}
	walk(doc)
	return sb.String()
}
