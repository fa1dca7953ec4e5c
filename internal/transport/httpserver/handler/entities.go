package handler

import (
	"context"
	"errors"
	"net/http"

	"weather-acquisition-go/internal/domain/collection"
	"weather-acquisition-go/internal/repository/remote"
	"weather-acquisition-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// EntityHandler serves one collection over HTTP. The routes mirror what the
// remote repository calls, so a remote repository pointed at this handler
// behaves like the repository behind it.
type EntityHandler[T any, PT collection.Identity[T]] struct {
	Repo collection.Repository[T]
	name string
	log  logger.Logger
}

func NewEntityHandler[T any, PT collection.Identity[T]](repo collection.Repository[T], name string, log logger.Logger) *EntityHandler[T, PT] {
	return &EntityHandler[T, PT]{
		Repo: repo,
		name: name,
		log:  log.With("collection", name),
	}
}

func (h *EntityHandler[T, PT]) Routes(r chi.Router) {
	r.Get("/", h.GetAll)
	r.Post("/", h.Add)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)

	r.Get("/count", h.Count)
	r.Post("/exist", h.Exists)
	r.Get("/exist/id/{id}", h.ExistsByID)
	r.Get("/items[{skip}:{count}]", h.Items)
	r.Get("/firsts[{count}]", h.Firsts)
	r.Get("/lasts[{count}]", h.Lasts)
	r.Get("/page[{pageIndex}/{pageSize}]", h.Page)
	r.Get("/{id}", h.GetByID)
}

func (h *EntityHandler[T, PT]) GetAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.GetAll(r.Context())
	if err != nil {
		h.fail(w, "get_all", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EntityHandler[T, PT]) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.Repo.GetCount(r.Context())
	if err != nil {
		h.fail(w, "count", err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

func (h *EntityHandler[T, PT]) Items(w http.ResponseWriter, r *http.Request) {
	skip, err := intParam(r, "skip")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	count, err := intParam(r, "count")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	items, err := h.Repo.Get(r.Context(), skip, count)
	if err != nil {
		h.fail(w, "get", err, "skip", skip, "count", count)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EntityHandler[T, PT]) Firsts(w http.ResponseWriter, r *http.Request) {
	h.edge(w, r, "get_firsts", collection.Firsts[T])
}

func (h *EntityHandler[T, PT]) Lasts(w http.ResponseWriter, r *http.Request) {
	h.edge(w, r, "get_lasts", collection.Lasts[T])
}

func (h *EntityHandler[T, PT]) edge(w http.ResponseWriter, r *http.Request, op string, read func(context.Context, collection.Repository[T], int) ([]T, error)) {
	count, err := intParam(r, "count")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	items, err := read(r.Context(), h.Repo, count)
	if err != nil {
		h.fail(w, op, err, "count", count)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EntityHandler[T, PT]) Page(w http.ResponseWriter, r *http.Request) {
	pageIndex, err := intParam(r, "pageIndex")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	pageSize, err := intParam(r, "pageSize")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	page, err := h.Repo.GetPage(r.Context(), pageIndex, pageSize)
	if err != nil {
		h.fail(w, "get_page", err, "page_index", pageIndex, "page_size", pageSize)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EntityHandler[T, PT]) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	item, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, "get_by_id", err, "id", id)
		return
	}
	if collection.IsAbsent[T, PT](item) {
		writeNotFound(w, h.name)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *EntityHandler[T, PT]) ExistsByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	ok, err := h.Repo.ContainsID(r.Context(), id)
	if err != nil {
		h.fail(w, "contains_id", err, "id", id)
		return
	}
	h.writeExists(w, ok)
}

func (h *EntityHandler[T, PT]) Exists(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	exists, err := h.Repo.Contains(r.Context(), item)
	if err != nil {
		h.fail(w, "contains", err, "id", PT(item).GetID())
		return
	}
	h.writeExists(w, exists)
}

func (h *EntityHandler[T, PT]) Add(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	added, err := h.Repo.Add(r.Context(), item)
	if err != nil {
		h.fail(w, "add", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *EntityHandler[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	updated, err := h.Repo.Update(r.Context(), item)
	if err != nil {
		h.fail(w, "update", err, "id", PT(item).GetID())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EntityHandler[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	removed, err := h.Repo.Remove(r.Context(), item)
	if err != nil {
		h.fail(w, "remove", err, "id", PT(item).GetID())
		return
	}
	if removed == nil {
		writeNotFound(w, h.name)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (h *EntityHandler[T, PT]) decodeItem(w http.ResponseWriter, r *http.Request) (*T, bool) {
	var item *T
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return nil, false
	}
	// A literal null body leaves item nil.
	if item == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "item is required")
		return nil, false
	}
	return item, true
}

func (h *EntityHandler[T, PT]) writeExists(w http.ResponseWriter, exists bool) {
	if !exists {
		writeNotFound(w, h.name)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (h *EntityHandler[T, PT]) fail(w http.ResponseWriter, op string, err error, args ...any) {
	message := h.name + "." + op
	var statusErr *remote.StatusError

	switch {
	case errors.Is(err, collection.ErrStaleRecord):
		h.log.BusinessError(message+": record not found", err, args...)
		writeNotFound(w, h.name)
	case errors.Is(err, collection.ErrNilItem):
		h.log.BusinessError(message+": missing item", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", "item is required")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.BusinessError(message+": request canceled", err, args...)
		writeError(w, http.StatusServiceUnavailable, "request_canceled", "request canceled")
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		h.log.BusinessError(message+": upstream record not found", err, args...)
		writeNotFound(w, h.name)
	case errors.As(err, &statusErr):
		h.log.InternalError(message+": upstream failed", err, append(args, "status", statusErr.StatusCode)...)
		writeError(w, http.StatusBadGateway, "upstream_error", "upstream error")
	default:
		h.log.InternalError(message+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
