// Package api exposes the booking engine over HTTP.
package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/Keta808/backendTesis/internal/booking"
	"github.com/Keta808/backendTesis/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *booking.Engine
	store   store.Store
	webpush *webpush.Options
	log     zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(engine *booking.Engine, s store.Store, webpushOptions *webpush.Options, log zerolog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		store:   s,
		webpush: webpushOptions,
		log:     log.With().Str("component", "api").Logger(),
	}
}
