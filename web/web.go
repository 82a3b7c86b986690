// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed views static
var files embed.FS

// Views returns the template tree rooted at views/.
func Views() fs.FS {
	return sub("views")
}

// Static returns the asset tree served under /static.
func Static() fs.FS {
	return sub("static")
}

func sub(dir string) fs.FS {
	tree, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return tree
}
