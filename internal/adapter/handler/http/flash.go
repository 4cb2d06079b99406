package http

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	flashSessionName = "coursepedia_flash"
	flashMessageKey  = "message"
	flashTypeKey     = "message_type"
)

// Flash message types
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// setFlash stores a one-shot message for the next page the browser loads
func setFlash(c echo.Context, messageType, message string) error {
	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[flashMessageKey] = message
	sess.Values[flashTypeKey] = messageType
	return sess.Save(c.Request(), c.Response())
}

// popFlash returns and clears the pending message
func popFlash(c echo.Context) (string, string, error) {
	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		return "", "", err
	}
	message, _ := sess.Values[flashMessageKey].(string)
	messageType, _ := sess.Values[flashTypeKey].(string)
	if message == "" {
		return "", "", nil
	}

	delete(sess.Values, flashMessageKey)
	delete(sess.Values, flashTypeKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", "", err
	}
	return messageType, message, nil
}

// FlashHandler exposes the pending flash message to the frontend
type FlashHandler struct{}

func NewFlashHandler() *FlashHandler {
	return &FlashHandler{}
}

// Pop handles GET /api/v1/flash
func (h *FlashHandler) Pop(c echo.Context) error {
	messageType, message, err := popFlash(c)
	if err != nil {
		return err
	}
	if message == "" {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      message,
		"message_type": messageType,
	})
}
