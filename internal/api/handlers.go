package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/internal/store"
)

const maxPageSize = 500

type handler struct {
	store store.Store
	log   *zap.Logger
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listDishes(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dishes, err := h.store.ListDishes(r.Context(), store.DishFilter{
		Country: r.URL.Query().Get("country"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dishes == nil {
		dishes = []*model.DishRecord{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: dishes})
}

func (h *handler) getDish(w http.ResponseWriter, r *http.Request) {
	dish, err := h.store.GetDish(r.Context(), model.DishKey(chi.URLParam(r, "key")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: dish})
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := model.RunStatus(r.URL.Query().Get("status"))
	switch status {
	case "", model.RunStatusRunning, model.RunStatusComplete, model.RunStatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	runs, err := h.store.ListRuns(r.Context(), store.RunFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if runs == nil {
		runs = []model.SyncRun{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: runs})
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataEnvelope{Data: run})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// page reads limit and offset. A missing limit lists everything for dishes
// and the store default for runs.
func page(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 || limit > maxPageSize {
			return 0, 0, eris.New("invalid limit")
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, eris.New("invalid offset")
		}
	}
	return limit, offset, nil
}

// writeJSON encodes payload before writing the status, so an encode failure
// still yields a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg})
}
