// Package flash carries one-shot notification messages between a redirect
// and the next rendered page, using a short-lived cookie.
package flash

import (
	"net/http"
	"net/url"
	"strings"
)

const cookieName = "flash"

// Message is a user-facing notification with a severity category
// (success, danger, info) matching the store's Response types.
type Message struct {
	Category string
	Text     string
}

// Set queues a flash message for the next request.
func Set(w http.ResponseWriter, category, text string) {
	value := url.QueryEscape(category + "|" + text)
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: value, Path: "/", MaxAge: 15})
}

// Pop returns the pending flash message, if any, and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Message{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Message{}, false
	}
	category, text, found := strings.Cut(raw, "|")
	if !found {
		return Message{Category: "info", Text: raw}, true
	}
	return Message{Category: category, Text: text}, true
}
