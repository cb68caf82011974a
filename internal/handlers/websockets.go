package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"coke_oven/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	msgOverview = "overview"
	msgError    = "error"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: take allowed origins from config
}

// overviewStream pushes oven overviews to one websocket client.
type overviewStream struct {
	h    *Handler
	conn *websocket.Conn
	oven int // 0 streams every oven
}

// @Summary      Overview stream
// @Description  Websocket. Sends {"type":"overview","data":[...]} every interval; ?oven narrows to one oven.
// @Tags         cycles
// @Param        interval     query  string  false  "Go duration, max 10s"  example(2s)
// @Param        interval_ms  query  int     false  "Milliseconds, max 10000"
// @Param        oven         query  int     false  "Oven id"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	oven, ok := parseIntQuery(c, "oven")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logError("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s := &overviewStream{h: h, conn: conn, oven: oven}
	s.run(c.Request.Context(), interval)
}

func (s *overviewStream) run(ctx context.Context, interval time.Duration) {
	closed := make(chan struct{})
	go s.drain(closed)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer ping.Stop()

	// The first overview must succeed or the client is dropped.
	if err := s.push(ctx); err != nil {
		s.h.logInfo("ws_initial_overview_failed", "err", err)
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.h.logInfo("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := s.push(ctx); err != nil && !s.reportTransient(err) {
				return
			}
		}
	}
}

// drain reads until the client goes away so control frames are processed.
func (s *overviewStream) drain(closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.h.logInfo("ws_read_closed", "err", err)
			return
		}
	}
}

func (s *overviewStream) push(ctx context.Context) error {
	status, err := s.h.services.Monitoring.Overview(ctx)
	if err != nil {
		s.h.logError("ws_overview_failed", "err", err)
		return err
	}
	if s.oven != 0 {
		status = filterOven(status, s.oven)
	}
	return s.write(wsEnvelope{Type: msgOverview, Data: status})
}

// reportTransient tells the client about a failed overview and reports
// whether the stream should continue. A closed or poisoned store ends it.
func (s *overviewStream) reportTransient(err error) bool {
	if errors.Is(err, models.ErrNotInitialized) || errors.Is(err, models.ErrLockUnavailable) {
		_ = s.write(wsEnvelope{Type: msgError, Error: err.Error()})
		return false
	}
	return s.write(wsEnvelope{Type: msgError, Error: "overview unavailable"}) == nil
}

func (s *overviewStream) write(env wsEnvelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}

func filterOven(status []models.OvenStatus, oven int) []models.OvenStatus {
	out := make([]models.OvenStatus, 0, 1)
	for _, st := range status {
		if st.Oven == oven {
			out = append(out, st)
		}
	}
	return out
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}
