package echoemu

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	inmemdb "github.com/trezcool/aula/storage/inmem"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errInvalidRefresh       = echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	errEmailExists          = echo.NewHTTPError(http.StatusConflict, "User already exists")
	errInvalidCode          = echo.NewHTTPError(http.StatusBadRequest, "Invalid verification code")
	errProjectNotFound      = echo.NewHTTPError(http.StatusNotFound, "Project not found")
	errMissingTable         = echo.NewHTTPError(http.StatusBadRequest, "tableName is required")
	errRowNotFound          = echo.NewHTTPError(http.StatusNotFound, "Record not found")
)

// newHTTPErrorHandler answers like the real backend: {"message": ..., "statusCode": ...}.
func newHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var herr *echo.HTTPError
		switch {
		case errors.As(err, &herr):
			if herr.Internal != nil {
				if inner, ok := herr.Internal.(*echo.HTTPError); ok {
					herr = inner
				}
			}
			code = herr.Code
			message = herr.Message
		case errors.Is(err, inmemdb.ErrRowNotFound):
			code = errRowNotFound.Code
			message = errRowNotFound.Message
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			if logger != nil {
				logger.Error("emulator error", errors.WithStack(err))
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"message": message, "statusCode": code})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
