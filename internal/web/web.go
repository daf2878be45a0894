package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexTemplate is the name the home page is registered under
const IndexTemplate = "index.html"

// PageData fills the home page template
type PageData struct {
	Title      string
	StartLabel string
	LivePath   string
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// IndexHandler renders the latency page; the engine must have Templates set
func IndexHandler(data PageData) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, IndexTemplate, data)
	}
}
