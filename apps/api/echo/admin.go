package echoapi

import (
	"net/http"
	"net/url"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
)

type adminApi struct {
	conf       *core.Config
	svc        *resource.Service
	reg        *registry
	validate   *validator.Validate
	translator ut.Translator
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := adminApi{
		conf:       deps.Conf,
		svc:        deps.Service,
		reg:        newRegistry(sessionTTL),
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	adm := g.Group("/admin")

	// un-authed endpoints
	adm.POST("/login", api.login)

	// authed endpoints
	ag := adm.Group("", jwt, adminMiddleware())
	ag.POST("/save", api.save)
	ag.POST("/uploads", api.upload)
	ag.GET("/banners", api.banners)
	ag.POST("/banners", api.addBanner)
	ag.DELETE("/banners/:index", api.removeBanner)
	ag.GET("/app-images", api.appImages)
	ag.PUT("/app-images", api.setAppImage)
	ag.GET("/classes/:class/hidden", api.hiddenCategories)
	ag.PUT("/classes/:class/hidden", api.setCategoryHidden)

	// editor sessions
	ag.POST("/sessions", api.createSession)
	sg := ag.Group("/sessions/:sid", editorSessionMiddleware(api.reg))
	sg.GET("", api.retrieveSession)
	sg.POST("/descend", api.descend)
	sg.POST("/ascend", api.ascend)
	sg.POST("/jump", api.jump)
	sg.POST("/reset", api.reset)
	sg.PUT("/media", api.setRootMedia)
	sg.POST("/nodes", api.addNode)
	sg.PUT("/nodes/:id", api.renameNode)
	sg.PUT("/nodes/:id/media", api.setNodeMedia)
	sg.DELETE("/nodes/:id", api.deleteNode)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(api.conf, data.Passcode)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) save(ctx echo.Context) error {
	if err := api.svc.Save(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "saving")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Changes saved."})
}

func (api *adminApi) upload(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return core.NewFieldError("file", "this field is required")
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	u, err := api.svc.Upload(ctx.Request().Context(), file.Filename, src)
	if err != nil {
		return errors.Wrap(err, "uploading")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"url": u})
}

func (api *adminApi) banners(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Banners())
}

func (api *adminApi) addBanner(ctx echo.Context) error {
	var data BannerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BannerRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.svc.AddBanner(data.URL); err != nil {
		return errors.Wrap(err, "adding banner")
	}
	return ctx.JSON(http.StatusCreated, api.svc.Banners())
}

func (api *adminApi) removeBanner(ctx echo.Context) error {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return core.NewFieldError("index", "must be a number")
	}
	if err := api.svc.RemoveBanner(index); err != nil {
		return errors.Wrap(err, "removing banner")
	}
	return ctx.JSON(http.StatusOK, api.svc.Banners())
}

func (api *adminApi) appImages(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.AppImages())
}

func (api *adminApi) setAppImage(ctx echo.Context) error {
	var data AppImageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AppImageRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.svc.SetAppImage(data.Key, data.URL); err != nil {
		return errors.Wrap(err, "setting app image")
	}
	return ctx.JSON(http.StatusOK, api.svc.AppImages())
}

func (api *adminApi) hiddenCategories(ctx echo.Context) error {
	hidden, err := api.svc.HiddenCategories(classParam(ctx))
	if err != nil {
		return errors.Wrap(err, "getting hidden categories")
	}
	if hidden == nil {
		hidden = []string{}
	}
	return ctx.JSON(http.StatusOK, hidden)
}

func (api *adminApi) setCategoryHidden(ctx echo.Context) error {
	var data HiddenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HiddenRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	class := classParam(ctx)
	if err := api.svc.SetCategoryHidden(class, data.Category, data.Hidden); err != nil {
		return errors.Wrap(err, "setting category visibility")
	}
	return api.hiddenCategories(ctx)
}

// Editor sessions

func (api *adminApi) createSession(ctx echo.Context) error {
	var data SessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	sess, err := api.svc.OpenEditor(data.Class, data.Category)
	if err != nil {
		return errors.Wrap(err, "opening editor")
	}
	id := api.reg.addEditor(sess)
	e, _ := api.reg.editor(id)
	return api.respond(ctx, http.StatusCreated, id, e, nil)
}

func (api *adminApi) retrieveSession(ctx echo.Context) error {
	return api.run(ctx, nil)
}

func (api *adminApi) descend(ctx echo.Context) error {
	var data DescendRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DescendRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		return ed.Descend(sess, data.ID)
	})
}

func (api *adminApi) ascend(ctx echo.Context) error {
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		ed.Ascend(sess)
		return nil
	})
}

func (api *adminApi) jump(ctx echo.Context) error {
	var data JumpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JumpRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		ed.JumpTo(sess, data.Index)
		return nil
	})
}

func (api *adminApi) reset(ctx echo.Context) error {
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		ed.Reset(sess)
		return nil
	})
}

func (api *adminApi) addNode(ctx echo.Context) error {
	var data NodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NodeRequest")
	}
	return api.runWithStatus(ctx, http.StatusCreated, func(ed *resource.Editor, sess *resource.EditorSession) error {
		_, err := ed.AddNode(sess, data.Label)
		return err
	})
}

func (api *adminApi) renameNode(ctx echo.Context) error {
	var data RenameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	id := ctx.Param("id")
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		return ed.RenameNode(sess, id, data.Label)
	})
}

func (api *adminApi) setNodeMedia(ctx echo.Context) error {
	var data MediaRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MediaRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	id := ctx.Param("id")
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		return ed.SetMedia(sess, id, resource.MediaKind(data.Kind), data.URL)
	})
}

func (api *adminApi) deleteNode(ctx echo.Context) error {
	id := ctx.Param("id")
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		return ed.DeleteNode(sess, id)
	})
}

func (api *adminApi) setRootMedia(ctx echo.Context) error {
	var data MediaRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MediaRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return api.run(ctx, func(ed *resource.Editor, sess *resource.EditorSession) error {
		return ed.SetRootMedia(sess, resource.MediaKind(data.Kind), data.URL)
	})
}

// Helpers

type editorOp func(*resource.Editor, *resource.EditorSession) error

func (api *adminApi) run(ctx echo.Context, op editorOp) error {
	return api.runWithStatus(ctx, http.StatusOK, op)
}

func (api *adminApi) runWithStatus(ctx echo.Context, code int, op editorOp) error {
	e, ok := ctx.Get(contextSessionKey).(*editorEntry)
	if !ok {
		return errors.Wrap(errSessionMissing, "retrieving session from context")
	}
	return api.respond(ctx, code, ctx.Param("sid"), e, op)
}

// respond applies op to the session then renders the session at its (possibly new) path.
func (api *adminApi) respond(ctx echo.Context, code int, id string, e *editorEntry, op editorOp) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := e.value

	var items []resource.Node
	var media resource.MediaSet
	err := api.svc.Edit(sess, func(ed *resource.Editor) error {
		if op != nil {
			if err := op(ed, sess); err != nil {
				return err
			}
		}
		var err error
		if items, err = ed.Children(sess); err != nil {
			return err
		}
		media, err = ed.RootMedia(sess)
		return err
	})
	if err != nil {
		return err
	}

	resp := newEditorResponse(id, sess, items, media)
	resp.Dirty = api.svc.Dirty()
	return ctx.JSON(code, resp)
}

func classParam(ctx echo.Context) string {
	class := ctx.Param("class")
	if unescaped, err := url.PathUnescape(class); err == nil {
		return unescaped
	}
	return class
}
