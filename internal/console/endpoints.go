// Package console drives the administrator screens for collections and
// article submissions over the admin REST API. Screen state lives in a Page
// view model that the caller renders.
package console

import (
	"strconv"
	"strings"
)

// Endpoints builds the URLs the console talks to.
type Endpoints struct {
	ListCollections  func() string
	CreateCollection func() string
	UpdateCollection func(id int64) string
	DeleteCollection func(id int64) string
	ListArticles     func() string
	DeleteArticle    func(id int64) string
	DownloadFile     func(id int64) string
}

// DefaultEndpoints returns the routes served by cmd/api under base, e.g.
// "http://localhost:8080".
func DefaultEndpoints(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	id := func(n int64) string { return strconv.FormatInt(n, 10) }

	return Endpoints{
		ListCollections:  func() string { return base + "/admin/collections" },
		CreateCollection: func() string { return base + "/admin/collection" },
		UpdateCollection: func(n int64) string { return base + "/admin/collection/" + id(n) },
		DeleteCollection: func(n int64) string { return base + "/admin/collection/" + id(n) },
		ListArticles:     func() string { return base + "/admin/articles" },
		DeleteArticle:    func(n int64) string { return base + "/admin/articles/" + id(n) },
		DownloadFile:     func(n int64) string { return base + "/admin/articles/" + id(n) + "/download" },
	}
}
