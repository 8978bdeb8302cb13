// Package render builds the server-side HTML pages. Every value that comes
// from a request or from the database goes through Escape.
package render

import (
	"fmt"
	"strings"

	"Resource-Library/internals/models"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape makes s safe for HTML text and quoted attribute values.
func Escape(s string) string {
	return escaper.Replace(s)
}

const style = `
    body{font-family: Arial,Helvetica,sans-serif;max-width:900px;margin:20px auto;padding:0 16px}
    header{display:flex;justify-content:space-between;align-items:center}
    .resource{border:1px solid #ddd;padding:12px;margin:8px 0;border-radius:6px}
    form input, form textarea, form select{display:block;width:100%;margin:6px 0;padding:8px}
    .small{font-size:0.9em;color:#666}`

// Page wraps body in the shared layout. who may be nil for anonymous visitors.
func Page(title, body string, who *models.Identity) string {
	nav := `<div><a href="/login">Login</a> | <a href="/register">Register</a></div>`
	if who.Authenticated() {
		nav = fmt.Sprintf(`<div>Signed in as %s | <a href="/account">Account</a> | <a href="/logout">Logout</a></div>`,
			Escape(who.Username))
	}

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width,initial-scale=1\">\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", Escape(title))
	fmt.Fprintf(&b, "  <style>%s\n  </style>\n", style)
	b.WriteString("</head>\n<body>\n  <header>\n")
	b.WriteString("    <h1><a href=\"/\">Resource Library</a></h1>\n")
	fmt.Fprintf(&b, "    %s\n", nav)
	b.WriteString("  </header>\n  <hr/>\n")
	b.WriteString(body)
	b.WriteString("\n  <hr/>\n")
	b.WriteString("  <footer class=\"small\">Resource Library, built with Go and SQLite</footer>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
