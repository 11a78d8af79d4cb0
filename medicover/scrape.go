package medicover

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"golang.org/x/net/html"
)

// The two HTML pages the flow depends on: the home page (login token) and
// the booking confirmation page (hidden form replay).

// scrapeVerificationToken finds the value of the hidden
// __RequestVerificationToken input on the login page.
func scrapeVerificationToken(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var token string
	walk(doc, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "input" && attr(node, "name") == "__RequestVerificationToken" {
			token = attr(node, "value")
			return false
		}
		return true
	})

	if token == "" {
		return "", errors.New("no __RequestVerificationToken input found")
	}
	return token, nil
}

// scrapeConfirmationForm collects the name/value pair of every input inside
// the booking confirmation form. The pairs are replayed unmodified; the
// server validates the booking against the exact token and slot identifiers
// it rendered into the page.
func scrapeConfirmationForm(r io.Reader) (url.Values, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var form *html.Node
	walk(doc, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "form" && attr(node, "action") == bookVisitPath {
			form = node
			return false
		}
		return true
	})
	if form == nil {
		return nil, errors.New("no confirmation form found")
	}

	fields := url.Values{}
	walk(form, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "input" {
			if name := attr(node, "name"); name != "" {
				fields.Add(name, attr(node, "value"))
			}
		}
		return true
	})
	return fields, nil
}

// walk runs fn over node and its descendants in document order, stopping
// when fn returns false.
func walk(node *html.Node, fn func(*html.Node) bool) bool {
	if !fn(node) {
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
