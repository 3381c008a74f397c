package websocket_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"handyhub/internal/websocket"
)

type countingPresence struct {
	*websocket.MemoryPresence
	mu     sync.Mutex
	tracks int
}

func (p *countingPresence) Track(ctx context.Context, sessionID string, userID int64, attrs map[string]string) error {
	p.mu.Lock()
	p.tracks++
	p.mu.Unlock()
	return p.MemoryPresence.Track(ctx, sessionID, userID, attrs)
}

func (p *countingPresence) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracks
}

func TestHandlerRefreshesPresenceOnPong(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := websocket.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	presence := &countingPresence{MemoryPresence: websocket.NewMemoryPresence()}
	router := websocket.NewRouter(hub, nil, presence, nil, nil)
	h := websocket.NewHandler(nil, hub, router, presence, nil, nil)

	engine := gin.New()
	engine.GET("/ws", h.Connect)
	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?userId=3"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		online, _ := presence.IsOnline(context.Background(), 3)
		return online
	}, time.Second, 5*time.Millisecond)
	before := presence.count()

	require.NoError(t, conn.WriteControl(gws.PongMessage, nil, time.Now().Add(time.Second)))
	require.Eventually(t, func() bool {
		return presence.count() > before
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, "")))
	require.Eventually(t, func() bool {
		online, _ := presence.IsOnline(context.Background(), 3)
		return !online
	}, time.Second, 5*time.Millisecond)
}
