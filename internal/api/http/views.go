package http

import (
	nethttp "net/http"

	"github.com/gofiber/template/html/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/miniinbox/inbox/web"
)

// NewViews loads the embedded page templates. reload re-parses them on every
// render, which only makes sense in development.
func NewViews(reload bool) *html.Engine {
	engine := html.NewFileSystem(nethttp.FS(web.Views()), ".html")
	engine.AddFunc("title", titleCase)
	engine.Reload(reload)
	return engine
}

// titleCase capitalizes API values such as "high" for display.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
