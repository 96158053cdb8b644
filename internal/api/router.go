package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Keta808/backendTesis/internal/booking"
	"github.com/Keta808/backendTesis/internal/mw"
	"github.com/Keta808/backendTesis/internal/store"
)

// RouterConfig tunes the router middleware.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures the gin router.
func NewRouter(engine *booking.Engine, s store.Store, webpushOptions *webpush.Options, cfg RouterConfig, log zerolog.Logger) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(engine, s, webpushOptions, log)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		reservations := api.Group("/reservations")
		{
			reservations.POST("", handler.CreateReservation)
			reservations.POST("/crear-reserva-horario", handler.CreateReservationAgainstBlocks)
			reservations.GET("/trabajador/:workerId", handler.ListByWorker)
			reservations.GET("/cliente/:clientId", handler.ListByClient)
			reservations.PUT("/cancelar/:id", handler.CancelByBusiness)
			reservations.PUT("/cancelarCliente/:id", handler.CancelByClient)
			reservations.PUT("/finalizar/:id", handler.Finalize)
			reservations.PUT("/:id/realizada", handler.MarkDone)
			reservations.DELETE("/:id", handler.DeleteReservation)
			// Calendar views tolerate briefly stale data, so they sit
			// behind the response cache.
			reservations.GET("/horas/trabajador/:workerId/:date", caching, handler.ActiveByWorkerDate)
			reservations.GET("/horas/microempresa/:serviceId/:date", caching, handler.ActiveByBusinessDate)
			reservations.GET("/count/:clientId/:microempresaId", handler.CountActive)
			reservations.GET("/servicio-url/:id", handler.PaymentService)
		}

		api.GET("/availability/:workerId/:date", caching, handler.FreeSlots)

		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
