package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/handler"
	"handyhub/internal/handler/mocks"
	"handyhub/internal/services"
	handyhub_errors "handyhub/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// newRouter mounts the chat routes; a non-zero caller simulates an
// authenticated user.
func newRouter(t *testing.T, caller int64) (*gin.Engine, *mocks.MockChatService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := mocks.NewMockChatService(gomock.NewController(t))

	r := gin.New()
	if caller != 0 {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(services.WithUserContext(c.Request.Context(), caller))
			c.Next()
		})
	}
	handler.NewChatHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestListConversations(t *testing.T) {
	r, svc := newRouter(t, 0)
	svc.EXPECT().ListConversations(gomock.Any(), int64(3)).
		Return([]conversation.Summary{{ID: "3-7", OtherUserID: 7, UnreadCount: 2}}, nil)

	code, env := do(t, r, http.MethodGet, "/api/v1/conversations/3", nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	var items []conversation.Summary
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	require.Equal(t, int64(2), items[0].UnreadCount)
}

func TestListConversationsUnknownUser(t *testing.T) {
	r, svc := newRouter(t, 0)
	svc.EXPECT().ListConversations(gomock.Any(), int64(99)).Return(nil, handyhub_errors.ErrNotFound)

	code, env := do(t, r, http.MethodGet, "/api/v1/conversations/99", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "NOT_FOUND", env.Code)
}

func TestConversationRejectsMalformedID(t *testing.T) {
	r, _ := newRouter(t, 0)

	for _, id := range []string{"abc", "3", "3-3", "3-x", "1-2-3"} {
		code, env := do(t, r, http.MethodGet, "/api/v1/conversation/"+id, nil)
		require.Equal(t, http.StatusBadRequest, code, id)
		require.Equal(t, "INVALID_REQUEST", env.Code, id)
	}
}

func TestConversationHistory(t *testing.T) {
	r, svc := newRouter(t, 7)
	svc.EXPECT().ListMessages(gomock.Any(), int64(7), int64(3)).
		Return([]message.View{{ID: 1}, {ID: 2}}, nil)

	code, env := do(t, r, http.MethodGet, "/api/v1/conversation/7-3", nil)
	require.Equal(t, http.StatusOK, code)

	var items []message.View
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
}

func TestConversationForbiddenForOutsider(t *testing.T) {
	r, _ := newRouter(t, 9)

	code, env := do(t, r, http.MethodGet, "/api/v1/conversation/3-7", nil)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "FORBIDDEN", env.Code)
}

func TestRecentMessagesQuery(t *testing.T) {
	r, svc := newRouter(t, 0)
	svc.EXPECT().RecentMessages(gomock.Any(), int64(3), int64(7), int64(40), 10).Return([]message.View{}, nil)

	code, _ := do(t, r, http.MethodGet, "/api/v1/conversation/3-7/recent?limit=10&beforeId=40", nil)
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, r, http.MethodGet, "/api/v1/conversation/3-7/recent?limit=ten", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "INVALID_REQUEST", env.Code)
}

func TestSendMessage(t *testing.T) {
	r, svc := newRouter(t, 3)
	svc.EXPECT().Send(gomock.Any(), services.SendInput{SenderID: 3, ReceiverID: 7, Content: "hello", Type: "TEXT"}).
		Return(message.View{ID: 11, SenderID: 3, ReceiverID: 7, Content: "hello"}, nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/messages",
		map[string]interface{}{"senderId": 3, "receiverId": 7, "text": "hello", "type": "TEXT"})
	require.Equal(t, http.StatusOK, code)

	var view message.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Equal(t, int64(11), view.ID)
}

func TestSendMessageErrors(t *testing.T) {
	r, svc := newRouter(t, 3)

	code, env := do(t, r, http.MethodPost, "/api/v1/messages",
		map[string]interface{}{"senderId": 7, "receiverId": 3, "text": "spoof"})
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "FORBIDDEN", env.Code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/messages", map[string]interface{}{"text": "no ids"})
	require.Equal(t, http.StatusBadRequest, code)

	svc.EXPECT().Send(gomock.Any(), gomock.Any()).Return(message.View{}, handyhub_errors.ErrInvalidInput)
	code, env = do(t, r, http.MethodPost, "/api/v1/messages",
		map[string]interface{}{"senderId": 3, "receiverId": 7, "text": "  "})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "INVALID_REQUEST", env.Code)

	svc.EXPECT().Send(gomock.Any(), gomock.Any()).Return(message.View{}, handyhub_errors.ErrInternal)
	code, env = do(t, r, http.MethodPost, "/api/v1/messages",
		map[string]interface{}{"senderId": 3, "receiverId": 7, "text": "hi"})
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "internal error", env.Error)
}

func TestMarkRead(t *testing.T) {
	r, svc := newRouter(t, 7)
	svc.EXPECT().MarkRead(gomock.Any(), int64(3), int64(7)).Return(nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/messages/mark-read",
		map[string]interface{}{"senderId": 3, "receiverId": 7})
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	code, _ = do(t, r, http.MethodPost, "/api/v1/messages/mark-read",
		map[string]interface{}{"senderId": 7, "receiverId": 3})
	require.Equal(t, http.StatusForbidden, code)
}

func TestUnreadCount(t *testing.T) {
	r, svc := newRouter(t, 0)
	svc.EXPECT().UnreadCount(gomock.Any(), int64(3), int64(7)).Return(int64(4), nil)

	code, env := do(t, r, http.MethodGet, "/api/v1/messages/unread-count?senderId=3&receiverId=7", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"unreadCount":4}`, string(env.Data))

	code, _ = do(t, r, http.MethodGet, "/api/v1/messages/unread-count?senderId=3", nil)
	require.Equal(t, http.StatusBadRequest, code)
}
