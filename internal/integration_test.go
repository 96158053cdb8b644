package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Keta808/backendTesis/internal/api"
	"github.com/Keta808/backendTesis/internal/booking"
	"github.com/Keta808/backendTesis/internal/db"
	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/store"
)

type capturedNotice struct {
	recipientID string
	cancelledBy booking.CancelActor
}

type noticeRecorder struct {
	notices []capturedNotice
}

func (n *noticeRecorder) NotifyCancellation(notice booking.CancellationNotice) {
	n.notices = append(n.notices, capturedNotice{
		recipientID: notice.RecipientID,
		cancelledBy: notice.CancelledBy,
	})
}

// TestReservationLifecycle walks a reservation through its entire life over
// the HTTP surface: booked, defended against a double booking, cancelled
// with the counterparty notified, rebooked, and finally auto-finalized once
// its end time passes.
func TestReservationLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---

	// 1. In-memory SQLite database with the production schema, including the
	// partial unique index guarding active slots.
	testDB, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared&_loc=auto"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	// 2. Engine with the production caps, a controllable clock and a
	// recording notifier in place of the push worker pool.
	appStore := store.NewGormStore(testDB)
	recorder := &noticeRecorder{}
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.Local)
	engine := booking.NewEngine(appStore, booking.Caps{MaxActivePerClient: 2, MaxActivePerBusiness: 1}, recorder, zerolog.Nop()).
		WithClock(func() time.Time { return now })

	router := api.NewRouter(engine, appStore, &webpush.Options{VAPIDPublicKey: "pk"}, api.RouterConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	}, zerolog.Nop())

	// 3. One microempresa with one worker bookable on Wednesdays 09:00-17:00.
	require.NoError(t, testDB.Create(&model.Microempresa{ID: "emp-1", Name: "Barberia Sur"}).Error)
	require.NoError(t, testDB.Create(&model.Trabajador{ID: "trab-1", Name: "Pedro", Email: "pedro@test.cl"}).Error)
	require.NoError(t, testDB.Create(&model.Cliente{ID: "cli-1", Name: "Ana", Email: "ana@test.cl"}).Error)
	require.NoError(t, testDB.Create(&model.Cliente{ID: "cli-2", Name: "Berta", Email: "berta@test.cl"}).Error)
	require.NoError(t, testDB.Create(&model.Servicio{
		ID: "srv-1", MicroempresaID: "emp-1", Name: "Corte", DurationMinutes: 30, Price: 10000,
	}).Error)
	require.NoError(t, testDB.Create(&model.WorkerLink{
		ID: "link-1", MicroempresaID: "emp-1", WorkerID: "trab-1", Active: true,
	}).Error)
	require.NoError(t, testDB.Create(&model.DaySchedule{
		WorkerID: "trab-1",
		Weekday:  time.Wednesday,
		Mode:     model.ModeWindows,
		Blocks:   []model.TimeBlock{{StartMinute: 540, EndMinute: 1020}},
	}).Error)

	post := func(path string, body map[string]string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	request := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	bookingBody := func(clientID, startTime string) map[string]string {
		return map[string]string{
			"clientId":  clientID,
			"workerId":  "trab-1",
			"serviceId": "srv-1",
			"date":      "2025-03-05",
			"startTime": startTime,
		}
	}

	var firstID string

	t.Run("Step 1: booking an open slot succeeds", func(t *testing.T) {
		w := post("/api/reservations", bookingBody("cli-1", "10:00"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Activa", resp["status"])
		firstID = resp["id"].(string)
	})

	t.Run("Step 2: an overlapping booking is rejected", func(t *testing.T) {
		w := post("/api/reservations", bookingBody("cli-2", "10:15"))
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "slot_conflict", resp["kind"])
		assert.Equal(t, firstID, resp["conflictingReservationId"])
	})

	t.Run("Step 3: client cancellation notifies the worker", func(t *testing.T) {
		w := request(http.MethodPut, "/api/reservations/cancelarCliente/"+firstID)
		require.Equal(t, http.StatusOK, w.Code)

		require.Len(t, recorder.notices, 1)
		assert.Equal(t, "trab-1", recorder.notices[0].recipientID)
		assert.Equal(t, booking.ActorClient, recorder.notices[0].cancelledBy)
	})

	t.Run("Step 4: the freed slot can be rebooked", func(t *testing.T) {
		w := post("/api/reservations", bookingBody("cli-2", "10:00"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Step 5: listing after the end time auto-finalizes", func(t *testing.T) {
		now = time.Date(2025, 3, 5, 10, 30, 0, 0, time.Local)

		w := request(http.MethodGet, "/api/reservations/cliente/cli-2")
		require.Equal(t, http.StatusOK, w.Code)

		var out []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "Finalizada", out[0]["status"])

		// The sweep is idempotent; a second listing reports the same state.
		w = request(http.MethodGet, "/api/reservations/cliente/cli-2")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "Finalizada", out[0]["status"])
	})

	t.Run("Step 6: finalized reservations admit no transitions", func(t *testing.T) {
		var r model.Reservation
		require.NoError(t, testDB.Where("client_id = ?", "cli-2").First(&r).Error)

		w := request(http.MethodPut, "/api/reservations/cancelarCliente/"+r.ID)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_transition", resp["kind"])
		assert.Equal(t, "Finalizada", resp["from"])
	})
}
