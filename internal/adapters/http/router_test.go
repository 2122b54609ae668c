package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := app.NewRegistry(nil)
	rooms := app.NewRooms(0)
	audit := app.NewAuditLog(nil, 0)
	o := (&orch.Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Moderation: app.NewModeration(audit, nil),
		Audit:      audit,
		Breakouts:  app.NewBreakouts(rooms, 0, 0),
		Relay:      app.NewRelay(reg),
		Hasher:     app.BcryptPasswords{Cost: bcrypt.MinCost},
	}).Start(context.Background())
	t.Cleanup(o.Close)

	cfg := &config.Config{Mode: "test", StaticPath: t.TempDir(), Secret: "test-secret"}
	return SetupRouter(context.Background(), cfg, o), o
}

func serve(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "ct", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := serve(r, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","rooms":0}`, w.Body.String())
}

func TestClientTokenCookieIssued(t *testing.T) {
	r, _ := newTestRouter(t)
	w := serve(r, http.MethodGet, "/api/me", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var ct *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" {
			ct = c
		}
	}
	require.NotNil(t, ct)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ct.Value, body["connectionId"])
	assert.Equal(t, domain.DefaultDisplayName, body["displayName"])
}

func TestRenameMe(t *testing.T) {
	r, o := newTestRouter(t)
	w := serve(r, http.MethodPut, "/api/me", "alice-token", `{"displayName":"  Alice "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", o.Registry.DisplayName("alice-token"))

	w = serve(r, http.MethodPut, "/api/me", "alice-token", `{"displayName":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomsAPI(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/rooms", "host", `{"id":"standup","displayName":"Standup"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var sum orch.RoomSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, domain.RoomID("standup"), sum.ID)
	assert.Equal(t, "Standup", sum.DisplayName)

	w = serve(r, http.MethodPost, "/api/rooms", "host", `{"id":"standup"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "taken id")

	w = serve(r, http.MethodPost, "/api/rooms", "host", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/rooms", "host", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Rooms []orch.RoomSummary `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Rooms, 2)

	w = serve(r, http.MethodGet, "/api/rooms/standup", "someone", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/rooms/nope", "someone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.CodeRoomNotFound))
}

func TestAuditEndpointRequiresCreator(t *testing.T) {
	r, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/rooms", "host", `{"id":"r"}`).Code)

	w := serve(r, http.MethodGet, "/api/rooms/r/audit", "host", "")
	require.Equal(t, http.StatusOK, w.Code)
	var export app.AuditExport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
	require.NotEmpty(t, export.Entries)
	assert.Equal(t, domain.AuditRoomCreated, export.Entries[0].Action)

	w = serve(r, http.MethodGet, "/api/rooms/r/audit", "stranger", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type discardSignal struct{}

func (discardSignal) TrySend(core.Frame) error { return nil }
func (discardSignal) Close()                   {}

func TestAuditEndpointAfterMeetingEnded(t *testing.T) {
	r, o := newTestRouter(t)
	require.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/rooms", "host", `{"id":"r"}`).Code)

	ctx := context.Background()
	o.Registry.BindSignal("host", discardSignal{}, func() {})
	require.NoError(t, o.Dispatch(ctx, "host", core.Message{Type: core.MsgJoinRoom, Room: "r"}))
	require.NoError(t, o.Dispatch(ctx, "host", core.Message{Type: core.MsgEndMeeting, Room: "r"}))
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/rooms/r", "host", "").Code)

	w := serve(r, http.MethodGet, "/api/rooms/r/audit", "host", "")
	require.Equal(t, http.StatusOK, w.Code)
	var export app.AuditExport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
	require.NotEmpty(t, export.Entries)
	assert.Equal(t, domain.AuditRoomDeleted, export.Entries[len(export.Entries)-1].Action)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/rooms/r/audit", "stranger", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/rooms/never/audit", "host", "").Code)
}

func TestICEServers(t *testing.T) {
	r, _ := newTestRouter(t)
	w := serve(r, http.MethodGet, "/api/ice-servers", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stun:")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrMeetingLocked))
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrInvalidPassword))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
