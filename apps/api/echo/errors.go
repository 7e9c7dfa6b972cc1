package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "admin not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAdminDisabled        = echo.NewHTTPError(http.StatusForbidden, "admin access is not configured")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errSessionNotFound      = echo.NewHTTPError(http.StatusNotFound, "session not found")
	errSessionMissing       = errors.New("session object not found in echo.Context")
)

// statusOf maps the resource errors to an HTTP status; 0 means unmapped.
func statusOf(err error) int {
	switch {
	case errors.Is(err, resource.ErrBusy):
		return http.StatusLocked
	case errors.Is(err, resource.ErrNodeNotFound),
		errors.Is(err, resource.ErrCategoryHidden),
		errors.Is(err, resource.ErrUnknownClass),
		errors.Is(err, resource.ErrUnknownCategory):
		return http.StatusNotFound
	case errors.Is(err, resource.ErrNoCategory),
		errors.Is(err, resource.ErrInvalidMediaKind),
		errors.Is(err, resource.ErrMediaUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, resource.ErrMediaOpen),
		errors.Is(err, resource.ErrNoMediaOpen),
		errors.Is(err, resource.ErrViewerClosed):
		return http.StatusConflict
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var uploadErr *resource.UploadError
		var saveErr *resource.SaveError

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if fields := origErr.FieldMap(); fields != nil {
				message = fields
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case errors.As(err, &uploadErr):
				code = http.StatusBadGateway
				m := echo.Map{"error": uploadErr.Error(), "kind": uploadErr.Kind}
				if r := uploadErr.Remediation(); r != "" {
					m["remediation"] = r
				}
				message = m
			case errors.As(err, &saveErr):
				code = http.StatusServiceUnavailable
				message = echo.Map{"error": saveErr.Error(), "retry": true}
			case errors.Is(err, resource.ErrStalePath):
				code = http.StatusConflict
				message = echo.Map{"error": resource.ErrStalePath.Error(), "reset": true}
			default:
				if code = statusOf(err); code != 0 {
					message = errors.Cause(err).Error()
					break
				}

				// any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				args := []interface{}{errors.Wrap(err, msg), map[string]interface{}{"path": ctx.Path()}}
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					args = append(args, core.Person{ID: claims.Subject, Username: claims.Subject})
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			if _, ok := message.(echo.Map); !ok {
				message = err.Error()
			}
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
