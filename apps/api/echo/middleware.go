package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && claims.Subject == adminSubject {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// editorSessionMiddleware loads the editor session named by :sid into the context.
func editorSessionMiddleware(reg *registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, ok := reg.editor(ctx.Param("sid"))
			if !ok {
				return errSessionNotFound
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

// viewerSessionMiddleware loads the viewer named by :sid into the context.
func viewerSessionMiddleware(reg *registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			v, ok := reg.viewer(ctx.Param("sid"))
			if !ok {
				return errSessionNotFound
			}
			ctx.Set(contextSessionKey, v)
			return next(ctx)
		}
	}
}
