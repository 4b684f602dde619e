package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/orgdirectory/internal/handlers"
)

func registerOrganizationRoutes(api *gin.RouterGroup, orgHandler *handlers.OrganizationHandler, seedLimiter gin.HandlerFunc) {
	orgs := api.Group("/organization")
	{
		orgs.GET("/GetList", orgHandler.GetList)
		orgs.GET("/Search", orgHandler.Search)
		orgs.POST("/CreateRandomData", seedLimiter, orgHandler.CreateRandomData)
	}
}
