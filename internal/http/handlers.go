package http

import (
	"context"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func probeFilter() core.Filter {
	return core.Filter{Page: 1, Limit: 1}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f := parseFilter(r).Normalize(s.maxPageSize)

	key := filterCacheKey(f)
	if resp, ok := s.listCache.Get(key); ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "list transactions failed",
			log.FieldOperation, log.OpList,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}
	if items == nil {
		items = []core.Transaction{}
	}

	resp := listResponse{
		Success:      true,
		Message:      "transactions fetched successfully",
		Total:        total,
		Page:         f.Page,
		Limit:        f.Limit,
		Transactions: items,
	}
	s.listCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := core.ValidateFull(in)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "create transaction failed",
			log.FieldOperation, log.OpCreate,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.afterWrite(ctx, events.ActionCreated, created.ID)
	writeJSON(w, http.StatusCreated, itemResponse{
		Success:     true,
		Message:     "transaction created successfully",
		Transaction: created,
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	in, err := decodeInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := core.ValidatePartial(in)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "update transaction failed",
			log.FieldOperation, log.OpUpdate,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	s.afterWrite(ctx, events.ActionUpdated, updated.ID)
	writeJSON(w, http.StatusOK, itemResponse{
		Success:     true,
		Message:     "transaction updated successfully",
		Transaction: updated,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "delete transaction failed",
			log.FieldOperation, log.OpDelete,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.afterWrite(ctx, events.ActionDeleted, id)
	writeJSON(w, http.StatusOK, statusResponse{
		Success: true,
		Message: "transaction deleted successfully",
	})
}

// afterWrite flushes cached list pages and publishes the write event.
// Publish failures are logged and swallowed; the write already happened.
func (s *Server) afterWrite(ctx context.Context, action, id string) {
	s.listCache.Purge()

	if err := s.publisher.Publish(ctx, action, id); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "event publish failed",
			log.FieldOperation, action,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
	}
}
