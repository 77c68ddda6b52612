package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/ordering/internal/ordering"
	"github.com/roach88/ordering/internal/present"
)

var rootPath = "/collections"
var collectionPathKey = "collection"

// ListCollection is a collection exposed through the order-list action.
type ListCollection struct {
	Source present.Source
	List   present.ListSpec
}

// RoutesHandler serves the order-list action for a fixed set of collections.
type RoutesHandler struct {
	Accounts    gin.Accounts
	Presenter   *present.Presenter
	Collections map[string]ListCollection
	Logger      *slog.Logger
}

// Validate checks every collection's list fields. A collection with an
// incomplete list is a configuration error.
func (h *RoutesHandler) Validate() error {
	for name, col := range h.Collections {
		if col.Source == nil {
			return ordering.NewConfigError(name, `the "model" property must be set`)
		}
		if err := col.List.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRoutes mounts the order-list action on engine.
func (h *RoutesHandler) RegisterRoutes(ginEngine *gin.Engine) {
	routerGroup := ginEngine.Group(rootPath,
		requireAccount(h.Accounts),
		requireAjax,
		requireSameOrigin,
	)
	routerGroup.POST("/:"+collectionPathKey+"/order-list", h.orderList)
}

// NewRouter validates h and returns a gin engine serving it.
func NewRouter(h *RoutesHandler) (*gin.Engine, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if h.Logger == nil {
		h.Logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(h.Logger))
	engine.NoRoute(noRoute)
	engine.NoMethod(noMethod)
	engine.HandleMethodNotAllowed = true
	h.RegisterRoutes(engine)
	return engine, nil
}

func (h *RoutesHandler) orderList(c *gin.Context) {
	name := c.Param(collectionPathKey)
	col, ok := h.Collections[name]
	if !ok {
		handleApiErr(c, &unknownCollectionErr)
		return
	}

	def := col.Source.Definition()
	group, ok := groupFromForm(c, def)
	if !ok {
		handleApiErr(c, &badRequestErr)
		return
	}

	tag := h.Presenter.Localizer().Match(c.GetHeader("Accept-Language"))
	options, err := h.Presenter.List(c.Request.Context(), col.Source, group, col.List, tag)
	if err != nil {
		h.Logger.Error("order list failed",
			"collection", name,
			"group", group.Encode(),
			"error", err,
		)
		handleApiErr(c, &internalErr)
		return
	}

	resp := ListResponse{ListItems: make([]ListItem, 0, len(options))}
	for _, o := range options {
		resp.ListItems = append(resp.ListItems, ListItem{Index: o.Key, Value: o.Label})
	}
	c.JSON(http.StatusOK, resp)
}

// groupFromForm reads the group identifier: group_id for a single group
// field, or group[<field>] for each field.
func groupFromForm(c *gin.Context, def ordering.Definition) (ordering.GroupKey, bool) {
	if !def.Grouped() {
		return ordering.GroupKey{}, true
	}

	key := ordering.GroupKey{}
	if len(def.GroupFields) == 1 {
		if id, ok := c.GetPostForm("group_id"); ok {
			key[def.GroupFields[0]] = id
			return key, true
		}
	}
	values, _ := c.GetPostFormMap("group")
	for _, field := range def.GroupFields {
		v, ok := values[field]
		if !ok {
			return nil, false
		}
		key[field] = v
	}
	return key, true
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func noRoute(c *gin.Context) {
	handleApiErr(c, &notFoundErr)
}

func noMethod(c *gin.Context) {
	handleApiErr(c, &noMethodErr)
}

func handleApiErr(c *gin.Context, apiError *ApiError) {
	c.JSON(apiError.StatusCode, apiError.Body)
}
