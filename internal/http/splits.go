package httpx

import (
	"net/http"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/service/split"
	"github.com/liftsplit/liftsplit/internal/validation"
)

const splitNotFound = "split not found"

type splitPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r *Router) handleCreateSplit(w http.ResponseWriter, req *http.Request) {
	body, err := readBody(w, req)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	var payload splitPayload
	if err := r.validator.Decode(validation.SplitCreate, body, &payload); err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	input := split.CreateInput{UserID: currentUser(req).ID, Description: payload.Description}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	created, err := r.splits.Create(req.Context(), input)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, newSplitResponse(*created))
}

func (r *Router) handleListSplits(w http.ResponseWriter, req *http.Request) {
	opts, err := listOptions(req)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	splits, err := r.splits.List(req.Context(), currentUser(req).ID, opts)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	out := make([]splitResponse, 0, len(splits))
	for _, s := range splits {
		out = append(out, newSplitResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (r *Router) handleGetSplit(w http.ResponseWriter, req *http.Request) {
	splitID, err := pathID(req, "id")
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	detail, err := r.splits.Get(req.Context(), currentUser(req).ID, splitID)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSplitDetailResponse(detail))
}

func (r *Router) handleUpdateSplit(w http.ResponseWriter, req *http.Request) {
	splitID, err := pathID(req, "id")
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	body, err := readBody(w, req)
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	var payload splitPayload
	if err := r.validator.Decode(validation.SplitUpdate, body, &payload); err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	updated, err := r.splits.Update(req.Context(), currentUser(req).ID, splitID, domain.SplitUpdate{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSplitResponse(*updated))
}

func (r *Router) handleDeleteSplit(w http.ResponseWriter, req *http.Request) {
	splitID, err := pathID(req, "id")
	if err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	if err := r.splits.Delete(req.Context(), currentUser(req).ID, splitID); err != nil {
		r.writeServiceError(w, req, err, splitNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
