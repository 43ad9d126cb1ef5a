// Package web embeds the page templates and static assets.
package web

import "embed"

// TemplatesFS holds index.html and the app/movements partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
