package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/metrics"
	"github.com/mamadbah2/procurement/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(requests *handlers.RequestHandler, canvass *handlers.CanvassHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pr := r.Group("/requests")
	pr.POST("", requests.Create)
	pr.GET("", requests.List)
	pr.GET("/:ref", requests.Get)
	pr.PATCH("/:ref/status", requests.UpdateStatus)

	cv := r.Group("/canvass/:ref")
	cv.POST("", canvass.Start)
	cv.GET("", canvass.Get)
	cv.GET("/award", canvass.Award)
	cv.PUT("/reference", canvass.AssignReference)
	cv.PUT("/receiver", canvass.SelectReceiver)
	cv.PUT("/resolution", canvass.SetResolution)
	cv.PUT("/abstract-no", canvass.SetAbstractNo)
	cv.POST("/bac/:index/sign", canvass.SignBAC)
	cv.POST("/abstract/:index/sign", canvass.SignAbstract)
	cv.POST("/divisions/:division/release", canvass.Release)
	cv.POST("/divisions/:division/return", canvass.MarkReturned)
	cv.PUT("/quotes", canvass.UpsertQuote)
	cv.PUT("/quotes/:supplier/prices/:item", canvass.SetPrice)
	cv.DELETE("/quotes/:supplier", canvass.RemoveQuote)
	cv.POST("/stages/:stage/view", canvass.View)
	cv.POST("/advance", canvass.Advance)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), duration)

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
