package catalog

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

const baseTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style>
    body { font-family: sans-serif; margin: 8px; }
    a { color: #000; text-decoration: underline; }
    a.item { display: block; text-decoration: none; }
    .item { padding: 12px 0; border-bottom: 1px solid #ccc; }
    .item-title { font-size: 1.1em; font-weight: bold; text-decoration: underline; }
    .item-meta { font-size: 0.9em; color: #666; }
    .nav { margin: 16px 0; }
    .nav-btn { display: inline-block; padding: 12px 16px; margin: 4px; border: 1px solid #000; text-decoration: none; }
    .empty { color: #666; }
  </style>
</head>
<body>
  %s
</body>
</html>`

// renderPage wraps content in the base template. title is escaped, content is
// expected to be escaped already.
func renderPage(title, content string) string {
	return fmt.Sprintf(baseTemplate, html.EscapeString(title), content)
}

func navBar(homeURL string) string {
	return fmt.Sprintf(`<div class="nav"><a href="%s" class="nav-btn">All books</a></div>`, html.EscapeString(homeURL))
}

// pagination renders prev/next links. Pages are 1-based.
func pagination(currentPage, totalPages int, baseURL string) string {
	if totalPages <= 1 {
		return ""
	}

	buildURL := func(page int) string {
		return baseURL + "?page=" + strconv.Itoa(page)
	}

	var parts []string
	if currentPage > 1 {
		parts = append(parts, fmt.Sprintf(`<a href="%s" class="nav-btn">← Prev</a>`, buildURL(currentPage-1)))
	} else {
		parts = append(parts, `<span class="nav-btn" style="color: #999;">← Prev</span>`)
	}

	parts = append(parts, fmt.Sprintf("Page %d of %d", currentPage, totalPages))

	if currentPage < totalPages {
		parts = append(parts, fmt.Sprintf(`<a href="%s" class="nav-btn">Next →</a>`, buildURL(currentPage+1)))
	} else {
		parts = append(parts, `<span class="nav-btn" style="color: #999;">Next →</span>`)
	}

	return fmt.Sprintf(`<div class="nav">%s</div>`, strings.Join(parts, " "))
}

// itemHTML renders one row of the list. The whole row is a link.
func itemHTML(title, url, meta, coverURL string) string {
	cover := ""
	if coverURL != "" {
		cover = fmt.Sprintf(`<img src="%s" alt="" style="max-width: 60px; max-height: 80px; float: left; margin-right: 8px;">`, html.EscapeString(coverURL))
	}
	return fmt.Sprintf(`<a href="%s" class="item">
  %s<div class="item-title">%s</div>
  <div class="item-meta">%s</div>
  <div style="clear: both;"></div>
</a>`, html.EscapeString(url), cover, html.EscapeString(title), html.EscapeString(meta))
}

func listPage(entries []*Entry, page, totalPages int) string {
	var b strings.Builder
	b.WriteString("<h1>Available books</h1>")
	if len(entries) == 0 {
		b.WriteString(`<p class="empty">No books to show.</p>`)
	}
	for _, entry := range entries {
		cover := ""
		if entry.CoverURL != nil {
			cover = *entry.CoverURL
		}
		b.WriteString(itemHTML(entry.Title, "/books/"+entry.ID, entryMeta(entry), cover))
	}
	b.WriteString(pagination(page, totalPages, "/books"))
	return renderPage("Available books", b.String())
}

func detailPage(entry *Entry) string {
	var b strings.Builder
	b.WriteString(navBar("/books"))
	if entry.CoverURL != nil {
		fmt.Fprintf(&b, `<img src="%s" alt="" style="max-width: 200px;">`, html.EscapeString(*entry.CoverURL))
	}
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(entry.Title))
	if entry.Author != "" {
		fmt.Fprintf(&b, "<p><b>Author:</b> %s</p>", html.EscapeString(entry.Author))
	}
	fmt.Fprintf(&b, "<p><b>Status:</b> %s</p>", html.EscapeString(entry.StatusLabel))
	fmt.Fprintf(&b, "<p><b>Owner:</b> %s</p>", html.EscapeString(entry.Owner))
	if len(entry.Genres) > 0 {
		fmt.Fprintf(&b, "<p><b>Genres:</b> %s</p>", html.EscapeString(strings.Join(entry.Genres, ", ")))
	}
	if entry.ISBN != nil {
		fmt.Fprintf(&b, "<p><b>ISBN:</b> %s</p>", html.EscapeString(*entry.ISBN))
	}
	if entry.AverageRating > 0 {
		fmt.Fprintf(&b, "<p><b>Rating:</b> %.1f</p>", entry.AverageRating)
	}
	if entry.Summary != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(entry.Summary))
	}
	return renderPage(entry.Title, b.String())
}

func entryMeta(entry *Entry) string {
	parts := []string{}
	if entry.Author != "" {
		parts = append(parts, entry.Author)
	}
	if entry.Owner != "" {
		parts = append(parts, "from "+entry.Owner)
	}
	return strings.Join(parts, " · ")
}
