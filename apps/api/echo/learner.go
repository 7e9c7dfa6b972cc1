package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core/resource"
)

type learnerApi struct {
	svc      *resource.Service
	reg      *registry
	validate *validator.Validate
}

func registerLearnerAPI(g *echo.Group, deps ServerDeps) {
	api := learnerApi{
		svc:      deps.Service,
		reg:      newRegistry(sessionTTL),
		validate: deps.Validate,
	}

	g.GET("/home", api.home)
	g.GET("/classes", api.classes)
	g.GET("/classes/:class/categories", api.categories)

	g.POST("/viewer/sessions", api.createSession)
	vg := g.Group("/viewer/sessions/:sid", viewerSessionMiddleware(api.reg))
	vg.GET("", api.retrieveSession)
	vg.DELETE("", api.destroySession)
	vg.POST("/select", api.selectItem)
	vg.POST("/back", api.back)
	vg.POST("/main", api.mainResource)
	vg.POST("/lesson", api.lessonContent)
	vg.POST("/tab", api.selectTab)
	vg.POST("/audio", api.toggleAudio)
}

func languages(ctx echo.Context) []string {
	if lang := ctx.Request().Header.Get("Accept-Language"); lang != "" {
		return []string{lang}
	}
	return nil
}

// Handlers

func (api *learnerApi) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"banners":   api.svc.Banners(),
		"appImages": api.svc.AppImages(),
		"offline":   api.svc.FromCache(),
	})
}

func (api *learnerApi) classes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, resource.Classes)
}

func (api *learnerApi) categories(ctx echo.Context) error {
	class := classParam(ctx)
	cats, err := api.svc.VisibleCategories(class, languages(ctx)...)
	if err != nil {
		return errors.Wrap(err, "listing categories")
	}
	return ctx.JSON(http.StatusOK, ClassResponse{Class: class, Categories: cats})
}

func (api *learnerApi) createSession(ctx echo.Context) error {
	var data SessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	v, err := api.svc.OpenViewer(data.Class, data.Category, languages(ctx)...)
	if err != nil {
		return errors.Wrap(err, "opening viewer")
	}
	id := api.reg.addViewer(v)
	return ctx.JSON(http.StatusCreated, newViewerResponse(id, v))
}

func (api *learnerApi) retrieveSession(ctx echo.Context) error {
	return api.run(ctx, nil)
}

func (api *learnerApi) destroySession(ctx echo.Context) error {
	api.reg.removeViewer(ctx.Param("sid"))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *learnerApi) selectItem(ctx echo.Context) error {
	var data SelectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return api.run(ctx, func(v *resource.Viewer) error {
		return v.Select(data.ID)
	})
}

func (api *learnerApi) back(ctx echo.Context) error {
	return api.run(ctx, func(v *resource.Viewer) error {
		v.Back()
		return nil
	})
}

func (api *learnerApi) mainResource(ctx echo.Context) error {
	return api.run(ctx, (*resource.Viewer).OpenMainResource)
}

func (api *learnerApi) lessonContent(ctx echo.Context) error {
	return api.run(ctx, (*resource.Viewer).OpenLessonContent)
}

func (api *learnerApi) selectTab(ctx echo.Context) error {
	var data TabRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TabRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return api.run(ctx, func(v *resource.Viewer) error {
		return v.SelectTab(resource.MediaKind(data.Kind))
	})
}

func (api *learnerApi) toggleAudio(ctx echo.Context) error {
	return api.run(ctx, func(v *resource.Viewer) error {
		_, err := v.ToggleAudio()
		return err
	})
}

func (api *learnerApi) run(ctx echo.Context, op func(*resource.Viewer) error) error {
	e, ok := ctx.Get(contextSessionKey).(*viewerEntry)
	if !ok {
		return errors.Wrap(errSessionMissing, "retrieving session from context")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if op != nil {
		if err := op(e.value); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, newViewerResponse(ctx.Param("sid"), e.value))
}
