// Package notification delivers cancellation notices over web push through
// a small worker pool.
package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/Keta808/backendTesis/internal/booking"
	"github.com/Keta808/backendTesis/internal/metrics"
	"github.com/Keta808/backendTesis/internal/store"
)

// Sender defines the interface for sending a single web push message.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans cancellation notices out to the recipient's push
// subscriptions. It implements booking.Notifier; dispatch never blocks the
// booking operation that triggered it.
type WorkerPool struct {
	size    int
	jobs    chan booking.CancellationNotice
	store   store.Store
	webpush *webpush.Options
	sender  Sender
	log     zerolog.Logger
}

// NewWorkerPool creates a worker pool of the given size.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, log zerolog.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan booking.CancellationNotice, size*4),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log.With().Str("component", "notification").Logger(),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// NotifyCancellation queues a notice. When the queue is full the notice is
// dropped rather than blocking the caller; delivery is best-effort.
func (wp *WorkerPool) NotifyCancellation(notice booking.CancellationNotice) {
	select {
	case wp.jobs <- notice:
	default:
		wp.log.Warn().Str("reservation", notice.Reservation.ID).Msg("notification queue full, notice dropped")
		metrics.IncNotificationSent("dropped")
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug().Int("worker", id).Msg("notification worker started")
	for {
		select {
		case notice := <-wp.jobs:
			wp.deliver(ctx, notice)
		case <-ctx.Done():
			wp.log.Debug().Int("worker", id).Msg("notification worker shutting down")
			return
		}
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, notice booking.CancellationNotice) {
	subs, err := wp.store.SubscriptionsForUser(ctx, notice.RecipientID)
	if err != nil {
		wp.log.Error().Err(err).Str("user", notice.RecipientID).Msg("failed to load push subscriptions")
		return
	}
	if len(subs) == 0 {
		return
	}

	payload := []byte(noticeMessage(notice))
	for i := range subs {
		wp.send(ctx, subs[i].Endpoint, subs[i].P256DH, subs[i].Auth, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, endpoint, p256dh, auth string, payload []byte) {
	sub := &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}

	resp, err := wp.sender.Send(payload, sub, wp.webpush)
	if err != nil {
		wp.log.Error().Err(err).Str("endpoint", endpoint).Msg("push delivery failed")
		metrics.IncNotificationSent("error")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info().Str("endpoint", endpoint).Msg("subscription expired, deleting")
		if err := wp.store.DeleteSubscription(ctx, endpoint); err != nil {
			wp.log.Error().Err(err).Str("endpoint", endpoint).Msg("failed to delete expired subscription")
		}
		metrics.IncNotificationSent("expired")
		return
	}

	metrics.IncNotificationSent("ok")
}

func noticeMessage(notice booking.CancellationNotice) string {
	r := notice.Reservation
	when := fmt.Sprintf("%s a las %s", r.Date.Format("02/01/2006"), r.StartTime.Format("15:04"))
	if notice.CancelledBy == booking.ActorClient {
		return fmt.Sprintf("La reserva del %s ha sido cancelada por el cliente.", when)
	}
	return fmt.Sprintf("Su reserva del %s ha sido cancelada.", when)
}
