package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRulesRoutes serves the checkout rule table to browser clients.
func RegisterRulesRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.GET("/api/checkout/rules", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=300")
		c.JSON(http.StatusOK, gin.H{
			"fields":           cfg.Rules.Fields,
			"postal":           cfg.Rules.Postal,
			"unit_price_cents": cfg.Orders.UnitPriceCents(),
		})
	})
}
