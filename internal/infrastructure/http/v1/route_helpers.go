package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler is the read side every document handler exposes.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
}

// RegisterDocumentRoutes registers the list and get routes of a document and
// returns the group for the document's own actions.
//
// Usage:
//
//	srns := RegisterDocumentRoutes(protected.Group("/srns"), srnHandler)
//	srns.POST("/:id/submit", srnHandler.Submit)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) *gin.RouterGroup {
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	return group
}

// readRoutes adapts a pair of handler funcs to DocumentRouteHandler.
type readRoutes struct {
	list gin.HandlerFunc
	get  gin.HandlerFunc
}

func (r readRoutes) List(c *gin.Context) { r.list(c) }
func (r readRoutes) Get(c *gin.Context)  { r.get(c) }
