package render

import (
	"fmt"
	"strings"

	"Resource-Library/internals/models"
)

const timeLayout = "2006-01-02 15:04:05"

// ResourceList is the home page body: search form, optional add link and
// one card per resource.
func ResourceList(query string, items []models.Resource, canAdd bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
  <form method="get" action="/">
    <input name="q" placeholder="Search resources" value="%s" />
    <button type="submit">Search</button>
  </form>
`, Escape(query))
	if canAdd {
		b.WriteString("  <p><a href=\"/add\">+ Add Resource</a></p>\n")
	}
	for _, r := range items {
		fmt.Fprintf(&b, `  <div class="resource">
    <h3><a href="/resource/%d">%s</a> <small>(%s)</small></h3>
    <p>%s</p>
`, r.ID, Escape(r.Title), Escape(r.Type), Escape(r.Description))
		if r.Link != "" {
			fmt.Fprintf(&b, "    <div><a href=\"%s\" target=\"_blank\">Open link</a></div>\n", Escape(r.Link))
		}
		b.WriteString("  </div>\n")
	}
	return b.String()
}

// ResourceDetail renders one resource. A missing author shows as "unknown".
func ResourceDetail(d *models.ResourceDetail, canEdit bool) string {
	author := d.Author
	if author == "" {
		author = "unknown"
	}
	created := ""
	if !d.CreatedAt.IsZero() {
		created = d.CreatedAt.UTC().Format(timeLayout)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
  <h2>%s</h2>
  <p class="small">Type: %s | Author: %s | Created: %s</p>
  <p>%s</p>
`, Escape(d.Title), Escape(d.Type), Escape(author), Escape(created), Escape(d.Description))
	if d.Link != "" {
		fmt.Fprintf(&b, "  <p><a href=\"%s\" target=\"_blank\">Open resource link</a></p>\n", Escape(d.Link))
	}
	if canEdit {
		fmt.Fprintf(&b, "  <p><a href=\"/resource/%d/edit\">Edit</a> | "+
			"<a href=\"/resource/%d/delete\" onclick=\"return confirm('Delete?');\">Delete</a></p>\n", d.ID, d.ID)
	}
	return b.String()
}

// AddResourceForm is the empty creation form.
func AddResourceForm() string {
	return `
  <h2>Add Resource</h2>
  <form method="post" action="/add">
    <label>Title</label>
    <input name="title" required />
    <label>Type (article/book/video/other)</label>
    <input name="type" required />
    <label>Description</label>
    <textarea name="description"></textarea>
    <label>Link (optional)</label>
    <input name="link" />
    <button type="submit">Add</button>
  </form>
`
}

// EditResourceForm is prefilled with the current values of r.
func EditResourceForm(r *models.Resource) string {
	return fmt.Sprintf(`
  <h2>Edit Resource</h2>
  <form method="post" action="/resource/%d/edit">
    <label>Title</label>
    <input name="title" required value="%s" />
    <label>Type</label>
    <input name="type" required value="%s" />
    <label>Description</label>
    <textarea name="description">%s</textarea>
    <label>Link</label>
    <input name="link" value="%s" />
    <button type="submit">Save</button>
  </form>
`, r.ID, Escape(r.Title), Escape(r.Type), Escape(r.Description), Escape(r.Link))
}

func RegisterForm() string {
	return `
  <h2>Register</h2>
  <form method="post" action="/register">
    <label>Username</label>
    <input name="username" required />
    <label>Display name</label>
    <input name="display_name" />
    <label>Password</label>
    <input type="password" name="password" required />
    <button type="submit">Create account</button>
  </form>
`
}

func LoginForm() string {
	return `
  <h2>Login</h2>
  <form method="post" action="/login">
    <label>Username</label>
    <input name="username" required />
    <label>Password</label>
    <input type="password" name="password" required />
    <button type="submit">Login</button>
  </form>
`
}

// AccountPage shows the profile form followed by the user's own resources.
func AccountPage(u *models.User, items []models.Resource) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
  <h2>Account</h2>
  <form method="post" action="/account">
    <label>Display name</label>
    <input name="display_name" value="%s" />
    <label>Change password (leave blank to keep)</label>
    <input type="password" name="password" />
    <button type="submit">Save</button>
  </form>
  <h3>Your resources</h3>
`, Escape(u.DisplayName))
	if len(items) == 0 {
		b.WriteString("  <div class=\"small\">None yet</div>\n")
	}
	for _, r := range items {
		fmt.Fprintf(&b, "  <div><a href=\"/resource/%d\">%s</a></div>\n", r.ID, Escape(r.Title))
	}
	return b.String()
}
