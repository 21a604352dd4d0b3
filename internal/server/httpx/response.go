// Package httpx holds the JSON envelope every endpoint answers with and the mapping from domain
// errors to HTTP statuses.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	categoryservice "quiz-arena/backend/internal/category/service"
	identityservice "quiz-arena/backend/internal/identity/service"
	"quiz-arena/backend/internal/platform/validation"
	questionservice "quiz-arena/backend/internal/question/service"
	roomservice "quiz-arena/backend/internal/room/service"
	sessionservice "quiz-arena/backend/internal/session/service"
)

// Message shown for any failure that is not a known domain error.
const MsgInternal = "Something went wrong"

// Envelope is the response body of every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope.
func OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail aborts the request with a failure envelope.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// Bind decodes the JSON body into dst. On failure it answers 400 and returns false.
func Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

type mapping struct {
	err     error
	status  int
	message string
}

var known = []mapping{
	{identityservice.ErrEmailAlreadyRegistered, http.StatusBadRequest, "Email already exists"},
	{identityservice.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{identityservice.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{sessionservice.ErrNoSession, http.StatusUnauthorized, "No active session"},
	{roomservice.ErrRoomNotFound, http.StatusNotFound, "Room not found"},
	{roomservice.ErrNotCreator, http.StatusForbidden, "Only the room creator can generate a code"},
	{roomservice.ErrInvalidCode, http.StatusBadRequest, "Invalid or expired room code"},
	{roomservice.ErrCodeExpired, http.StatusBadRequest, "Room code has expired"},
	{roomservice.ErrAlreadyParticipant, http.StatusBadRequest, "You are already a participant in this room"},
	{roomservice.ErrRoomFull, http.StatusBadRequest, "Participant limit reached"},
	{roomservice.ErrCodeInUse, http.StatusBadRequest, "Room code already in use"},
	{categoryservice.ErrNotFound, http.StatusNotFound, "Category not found"},
	{questionservice.ErrNotFound, http.StatusNotFound, "Question not found"},
	{questionservice.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
}

// Status returns the HTTP status and caller-safe message for err.
func Status(err error) (int, string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}
	for _, m := range known {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, MsgInternal
}

// Error answers with the status for err. Unexpected errors are logged with their oops context and
// reported to the caller only as MsgInternal.
func Error(c *gin.Context, err error) {
	status, msg := Status(err)
	if status == http.StatusInternalServerError {
		ev := log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath())
		if oe, ok := oops.AsOops(err); ok {
			ev = ev.Interface("code", oe.Code()).Fields(oe.Context())
		}
		ev.Msg("http: request failed")
	}
	Fail(c, status, msg)
}
