package router

import "github.com/gin-gonic/gin"

// Module is a route bundle that mounts itself on the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
