package contactform

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html templates/partials/*.html
var embeddedTemplates embed.FS

//go:embed static/css/*.css static/js/*.js
var embeddedStatic embed.FS

// TemplatesFS exposes the page templates rooted at templates/.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// StaticFS exposes the stylesheet and browser script rooted at static/.
//
// Typical mount:
//
//	mux.Handle("/static/*",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(contactform.StaticFS()),
//	  ),
//	)
func StaticFS() fs.FS {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return embeddedStatic
	}
	return sub
}
