package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"quiz-arena/backend/internal/platform/validation"
	roomservice "quiz-arena/backend/internal/room/service"
)

func init() { gin.SetMode(gin.TestMode) }

func TestStatus(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", validation.New("email", "Invalid email address"), http.StatusBadRequest, "Invalid email address"},
		{"wrapped sentinel", fmt.Errorf("join: %w", roomservice.ErrRoomFull), http.StatusBadRequest, "Participant limit reached"},
		{"forbidden", roomservice.ErrNotCreator, http.StatusForbidden, "Only the room creator can generate a code"},
		{"not found", roomservice.ErrRoomNotFound, http.StatusNotFound, "Room not found"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, MsgInternal},
		{"oops wrapped", oops.Code("ROOM_LOCK_FAILED").Wrap(errors.New("timeout")), http.StatusInternalServerError, MsgInternal},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := Status(tc.err)
			if status != tc.status || msg != tc.msg {
				t.Errorf("Status = (%d, %q), want (%d, %q)", status, msg, tc.status, tc.msg)
			}
		})
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return env
}

func TestError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, oops.Code("DB_DOWN").With("host", "db-1").Wrap(errors.New("secret detail")))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	env := decode(t, w)
	if env.Success || env.Message != MsgInternal {
		t.Errorf("envelope = %+v", env)
	}
	if !c.IsAborted() {
		t.Error("context should be aborted")
	}
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OK(c, http.StatusCreated, "Room created successfully!", map[string]string{"roomId": "r-1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	env := decode(t, w)
	if !env.Success || env.Message != "Room created successfully!" {
		t.Errorf("envelope = %+v", env)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["roomId"] != "r-1" {
		t.Errorf("data = %#v", env.Data)
	}
}

func TestBind_InvalidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.Header.Set("Content-Type", "application/json")

	var dst struct{ Name string }
	if Bind(c, &dst) {
		t.Fatal("Bind should fail on an empty body")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
