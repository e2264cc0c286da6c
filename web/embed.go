package web

import "embed"

// TemplatesFS holds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
