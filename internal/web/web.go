package web

import (
	"embed"
	"io/fs"
	"net/http"
)

// static holds the landing page so deployments ship one binary.
//
//go:embed static
var static embed.FS

// FS returns the landing page assets rooted at the site root.
func FS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// the embed path is fixed at build time
		panic(err)
	}
	return sub
}

// Handler serves the landing page and its assets.
func Handler() http.Handler {
	return http.FileServer(http.FS(FS()))
}
