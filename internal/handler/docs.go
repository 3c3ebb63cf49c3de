package handler

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Swagger UI loads from a CDN and points at /openapi.yaml; both files ship inside the binary.
//
//go:embed docs/openapi.yaml docs/swagger.html
var docsFS embed.FS

// RegisterDocs mounts documentation endpoints at the root:
//   - GET /openapi.yaml: raw OpenAPI spec
//   - GET /docs: Swagger UI rendering of the spec
func RegisterDocs(r *gin.Engine) {
	r.GET("/openapi.yaml", serveEmbedded("docs/openapi.yaml", "application/yaml; charset=utf-8"))
	r.GET("/docs", serveEmbedded("docs/swagger.html", "text/html; charset=utf-8"))
}

func serveEmbedded(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := docsFS.ReadFile(name)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to read %s: %v", name, err)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}
