package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. Collection
// routes answer with and without the trailing slash.
func (h *Handler) Register(rg *gin.RouterGroup) {
	for _, root := range []string{"", "/"} {
		rg.POST(root, h.create)
		rg.GET(root, h.list)
	}
	rg.GET("/filter", h.filter)
	rg.GET("/filter/", h.filter)
	rg.GET("/stats", h.stats)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.replace)
	rg.PATCH("/:id", h.patch)
	rg.DELETE("/:id", h.delete)
}
