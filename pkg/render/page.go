package render

import (
	"io"

	"github.com/vango-dev/loom/pkg/host/memhost"
)

// DefaultClientScript is where the live client is served.
const DefaultClientScript = "/_loom/client.js"

// PageData contains everything needed to render a complete document.
type PageData struct {
	// Body is the render container. Its children become the content of the
	// root element.
	Body *memhost.Node

	Title string

	// Lang defaults to "en".
	Lang string

	// RootID is the id of the element wrapping Body. Defaults to "root".
	RootID string

	// Styles are inline CSS blocks.
	Styles []string

	// ClientScript is the live client path. Empty means no client, which
	// produces a static page.
	ClientScript string

	// LiveURL is the websocket endpoint handed to the client.
	LiveURL string
}

// RenderPage writes a full HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if page.Lang == "" {
		page.Lang = "en"
	}
	if page.RootID == "" {
		page.RootID = "root"
	}

	ew := &errWriter{w: w}
	ew.WriteString("<!DOCTYPE html>\n")
	ew.printf(`<html lang="%s">`+"\n", escapeAttr(page.Lang))

	ew.WriteString("<head>\n")
	ew.WriteString(`  <meta charset="utf-8">` + "\n")
	ew.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		ew.printf("  <title>%s</title>\n", escapeHTML(page.Title))
	}
	for _, style := range page.Styles {
		ew.printf("  <style>%s</style>\n", style)
	}
	ew.WriteString("</head>\n")

	ew.WriteString("<body>\n")
	ew.printf(`<div id="%s">`, escapeAttr(page.RootID))
	if page.Body != nil {
		for _, c := range page.Body.Children {
			r.renderNode(ew, c, 1)
		}
	}
	ew.WriteString("</div>\n")

	if page.ClientScript != "" {
		if page.LiveURL != "" {
			ew.printf(`  <script src="%s" data-live="%s" data-root="%s" defer></script>`+"\n",
				escapeAttr(page.ClientScript), escapeAttr(page.LiveURL), escapeAttr(page.RootID))
		} else {
			ew.printf(`  <script src="%s" data-root="%s" defer></script>`+"\n",
				escapeAttr(page.ClientScript), escapeAttr(page.RootID))
		}
	}

	ew.WriteString("</body>\n</html>\n")
	return ew.err
}
