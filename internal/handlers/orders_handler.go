package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/landing-checkout/internal/orders"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	Orders *orders.Service
	Rules  *validation.Rules
	Logger *zap.Logger
}

// RegisterOrdersRoutes registers POST /api/orders.
func RegisterOrdersRoutes(r gin.IRouter, cfg HandlerConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.POST("/api/orders", func(c *gin.Context) {
		var raw validation.RawOrder
		if err := validation.BindOrder(c, &raw); err != nil {
			// BindOrder already wrote a 400
			return
		}

		meta := orders.RequestMeta{
			UserAgent: c.Request.UserAgent(),
			IP:        clientIP(c.Request),
		}
		receipt, err := cfg.Orders.CreateOrder(c.Request.Context(), raw, meta)
		if err != nil {
			var verrs validation.Errors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "errors": verrs})
				return
			}
			logger.Error("order insert failed", zap.Error(err), zap.String("ip", meta.IP))
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server error"})
			return
		}

		logger.Info("order created",
			zap.String("order_id", receipt.ID),
			zap.Int("total_cents", receipt.TotalCents))
		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"id":          receipt.ID,
			"created_at":  receipt.CreatedAt,
			"total_cents": receipt.TotalCents,
		})
	})
}

// clientIP prefers the first X-Forwarded-For hop and falls back to the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
