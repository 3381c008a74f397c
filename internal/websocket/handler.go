package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"handyhub/internal/events"
	"handyhub/internal/services"
	"handyhub/internal/transport/httpdto"
	handyhub_errors "handyhub/pkg/errors"
	"handyhub/pkg/logger"
)

type Handler struct {
	auth     *services.AuthService
	hub      *Hub
	router   *Router
	presence PresenceTracker
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewHandler(auth *services.AuthService, hub *Hub, router *Router, presence PresenceTracker, origins []string, log *logger.Logger) *Handler {
	if presence == nil {
		presence = NewMemoryPresence()
	}
	if log == nil {
		log = logger.NewNop()
	}
	allowAll := len(origins) == 0 || lo.Contains(origins, "*")
	return &Handler{
		auth:     auth,
		hub:      hub,
		router:   router,
		presence: presence,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || lo.Contains(origins, origin)
			},
		},
		log: log.Named("websocket"),
	}
}

// Connect upgrades the request and serves the socket until it closes.
// Identity comes from ?token= or, with auth disabled, ?userId=.
func (h *Handler) Connect(c *gin.Context) {
	userID, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := NewSession(userID)
	client := NewClient(conn, session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = services.WithUserContext(ctx, userID)
	ctx = context.WithValue(ctx, logger.UserIdKey, userID)
	if rid, ok := c.Request.Context().Value(logger.RequestIdKey).(string); ok {
		ctx = context.WithValue(ctx, logger.RequestIdKey, rid)
	}
	log := h.log.Ctx(ctx).With(zap.String("session_id", session.ID))

	h.hub.Register(client)
	h.hub.Subscribe(client, events.UserQueue(userID))
	if err := h.presence.Track(ctx, session.ID, userID, session.Snapshot()); err != nil {
		log.Warn("presence track failed", zap.Error(err))
	}
	log.Info("websocket connected")

	go client.WriteLoop(ctx)
	err = client.ReadLoop(func(raw []byte) {
		h.router.Handle(ctx, client, raw)
	}, func() {
		// keeps presence keys alive for as long as the peer answers pings
		if err := h.presence.Track(ctx, session.ID, userID, session.Snapshot()); err != nil {
			log.Debug("presence refresh failed", zap.Error(err))
		}
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.Debug("websocket read ended", zap.Error(err))
	}

	h.hub.Unregister(client)
	if err := h.presence.Forget(context.Background(), session.ID, userID); err != nil {
		log.Warn("presence forget failed", zap.Error(err))
	}
	log.Info("websocket disconnected")
}

func (h *Handler) authenticate(c *gin.Context) (int64, error) {
	if h.auth != nil && h.auth.Enabled() {
		return h.auth.ParseAccessToken(c.Query("token"))
	}
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, handyhub_errors.ErrUnauthorized
	}
	return userID, nil
}
