// Package web embeds the static overlay page served at / and /index.html.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var files embed.FS

// Static is the overlay page's file tree: index.html, overlay.js and overlay.css.
var Static = mustSub(files, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
