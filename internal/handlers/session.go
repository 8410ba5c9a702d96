package handlers

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionName is the cookie session holding the viewer identity.
	SessionName = "placetalk_session"

	sessionEmailKey = "email"
)

// SessionHandler records the signed-in viewer's email in the cookie session.
// There is no password and no verification; the chat core treats sender
// identity as an opaque string supplied by an external identity source.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Create handles POST /api/session.
func (h *SessionHandler) Create(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := session.Get(SessionName, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open session")
	}
	sess.Values[sessionEmailKey] = req.Email
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save session")
	}

	return c.JSON(http.StatusOK, map[string]string{"email": req.Email})
}

// SessionEmail returns the viewer email stored in the cookie session, or ""
// when there is no session.
func SessionEmail(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	email, _ := sess.Values[sessionEmailKey].(string)
	return email
}
