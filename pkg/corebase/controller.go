package corebase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/pkg/convert"
)

// ServiceOps is every operation a Controller drives. Both *GenericService[T]
// and *MultiTenantService[T] satisfy it via method promotion, so a
// Controller is constructed the same way regardless of which one backs it.
type ServiceOps[T any] interface {
	GetAll(ctx context.Context, uc UserContext) ([]T, error)
	Get(ctx context.Context, uc UserContext, ops []Operation, qo QueryOptions) (PagedResult[T], error)
	GetById(ctx context.Context, uc UserContext, id Id) (T, error)
	GetCount(ctx context.Context, uc UserContext, qo QueryOptions) (int, error)
	Create(ctx context.Context, uc UserContext, wire map[string]any) (T, error)
	BatchUpdate(ctx context.Context, uc UserContext, wires []map[string]any) ([]T, error)
	FullUpdateById(ctx context.Context, uc UserContext, id Id, wire map[string]any) (T, error)
	PartialUpdateById(ctx context.Context, uc UserContext, id Id, wire map[string]any) (T, error)
	DeleteById(ctx context.Context, uc UserContext, id Id) (DeleteResult, error)
}

// Projector encodes a domain value for external response, optionally via a
// projection schema. *ModelSpec[T].Project satisfies this; callers that
// want the full schema on the wire instead pass Encode.
type Projector[T any] func(value T) (map[string]any, error)

// Controller maps a REST surface for slug S onto a Service's operation
// set: GET/POST/PUT/PATCH/DELETE under /api/{S}, exactly as enumerated in
// the component design. Every route requires authentication.
type Controller[T any] struct {
	Slug          string
	Service       ServiceOps[T]
	IdSchema      IdSchema
	Authenticator Authenticator
	Project       Projector[T]
	// OpsForGet supplies the join operations the "list" route (GET
	// /api/{S}) compiles into the query; most resources have none.
	OpsForGet []Operation
}

// RegisterRoutes mounts the nine routes from the REST mapping onto router,
// all behind an authentication middleware that resolves a UserContext via
// c.Authenticator and stores it in the request context.
func (c *Controller[T]) RegisterRoutes(router chi.Router) {
	router.Route("/"+c.Slug, func(r chi.Router) {
		r.Use(c.requireAuth)
		r.Get("/", c.handleGet)
		r.Get("/all", c.handleGetAll)
		r.Get("/count", c.handleGetCount)
		r.Get("/{id}", c.handleGetById)
		r.Post("/", c.handleCreate)
		r.Patch("/batch", c.handleBatchUpdate)
		r.Put("/{id}", c.handleFullUpdate)
		r.Patch("/{id}", c.handlePartialUpdate)
		r.Delete("/{id}", c.handleDelete)
	})
}

type ucKeyType struct{}

var ucKey ucKeyType

func (c *Controller[T]) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		uc, err := c.Authenticator.Authenticate(r.Context(), credential)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ucKey, uc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userContextFrom(r *http.Request) UserContext {
	uc, _ := r.Context().Value(ucKey).(UserContext)
	return uc
}

func (c *Controller[T]) project(v T) (any, error) {
	if c.Project == nil {
		return v, nil
	}
	return c.Project(v)
}

func (c *Controller[T]) parseId(r *http.Request) (Id, error) {
	raw := chi.URLParam(r, "id")
	return c.IdSchema.Parse(raw)
}

func (c *Controller[T]) handleGet(w http.ResponseWriter, r *http.Request) {
	qo := queryOptionsFromRequest(r)
	result, err := c.Service.Get(r.Context(), userContextFrom(r), c.OpsForGet, qo)
	if err != nil {
		writeError(w, err)
		return
	}
	projected := make([]any, 0, len(result.Entities))
	for _, e := range result.Entities {
		p, err := c.project(e)
		if err != nil {
			writeError(w, err)
			return
		}
		projected = append(projected, p)
	}
	writeData(w, http.StatusOK, projected)
}

func (c *Controller[T]) handleGetAll(w http.ResponseWriter, r *http.Request) {
	entities, err := c.Service.GetAll(r.Context(), userContextFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	projected := make([]any, 0, len(entities))
	for _, e := range entities {
		p, err := c.project(e)
		if err != nil {
			writeError(w, err)
			return
		}
		projected = append(projected, p)
	}
	writeData(w, http.StatusOK, projected)
}

func (c *Controller[T]) handleGetCount(w http.ResponseWriter, r *http.Request) {
	qo := queryOptionsFromRequest(r)
	count, err := c.Service.GetCount(r.Context(), userContextFrom(r), qo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, count)
}

func (c *Controller[T]) handleGetById(w http.ResponseWriter, r *http.Request) {
	id, err := c.parseId(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entity, err := c.Service.GetById(r.Context(), userContextFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	projected, err := c.project(entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, projected)
}

func (c *Controller[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var wire map[string]any
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, apperr.BadRequest("malformed request body"))
		return
	}
	entity, err := c.Service.Create(r.Context(), userContextFrom(r), wire)
	if err != nil {
		writeError(w, err)
		return
	}
	projected, err := c.project(entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, projected)
}

func (c *Controller[T]) handleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	var wires []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&wires); err != nil {
		writeError(w, apperr.BadRequest("batch body must be a JSON array"))
		return
	}
	entities, err := c.Service.BatchUpdate(r.Context(), userContextFrom(r), wires)
	if err != nil {
		writeError(w, err)
		return
	}
	projected := make([]any, 0, len(entities))
	for _, e := range entities {
		p, err := c.project(e)
		if err != nil {
			writeError(w, err)
			return
		}
		projected = append(projected, p)
	}
	writeData(w, http.StatusOK, projected)
}

func (c *Controller[T]) handleFullUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := c.parseId(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var wire map[string]any
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, apperr.BadRequest("malformed request body"))
		return
	}
	entity, err := c.Service.FullUpdateById(r.Context(), userContextFrom(r), id, wire)
	if err != nil {
		writeError(w, err)
		return
	}
	projected, err := c.project(entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, projected)
}

func (c *Controller[T]) handlePartialUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := c.parseId(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var wire map[string]any
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeError(w, apperr.BadRequest("malformed request body"))
		return
	}
	entity, err := c.Service.PartialUpdateById(r.Context(), userContextFrom(r), id, wire)
	if err != nil {
		writeError(w, err)
		return
	}
	projected, err := c.project(entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, projected)
}

func (c *Controller[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := c.parseId(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := c.Service.DeleteById(r.Context(), userContextFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{})
}

// queryOptionsFromRequest parses filter/sort/pagination query params into
// a QueryOptions. Filters are passed as "filter.<field>=<value>" (equality
// only via the querystring; richer predicates are built programmatically
// by callers of the Service that need them).
func queryOptionsFromRequest(r *http.Request) QueryOptions {
	q := r.URL.Query()
	qo := QueryOptions{
		OrderBy:       q.Get("orderBy"),
		SortDirection: SortAsc,
		Filters:       map[string]Predicate{},
	}
	if q.Get("sortDirection") == string(SortDesc) {
		qo.SortDirection = SortDesc
	}
	qo.Page = convert.ToInt(q.Get("page"))
	qo.PageSize = convert.ToInt(q.Get("pageSize"))
	for key, values := range q {
		const prefix = "filter."
		if !strings.HasPrefix(key, prefix) || len(values) == 0 {
			continue
		}
		field := strings.TrimPrefix(key, prefix)
		qo.Filters[field] = Eq(values[0])
	}
	return qo
}

// responseEnvelope is the successful-response shape: {"data": ...}.
type responseEnvelope struct {
	Data any `json:"data"`
}

// errorEnvelope is the error shape: {"errors": [{message, field?}]}.
type errorEnvelope struct {
	Errors []errorItem `json:"errors"`
}

type errorItem struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(responseEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	ae := apperr.As(err)
	if ae == nil {
		ae = apperr.Internal(err)
	}
	items := make([]errorItem, 0, max(1, len(ae.Details)))
	if len(ae.Details) == 0 {
		items = append(items, errorItem{Message: ae.Message})
	} else {
		for _, d := range ae.Details {
			items = append(items, errorItem{Message: d.Message, Field: d.Field})
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(ae.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Errors: items})
}
