package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"smartbills/internal/core"
)

// subscriptionRequest is the write payload for create and update.
type subscriptionRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	DueDate  string  `json:"due_date"`
	Category string  `json:"category"`
	Schedule string  `json:"schedule"`
	Notes    string  `json:"notes,omitempty"`
}

// subscriptionResponse mirrors a stored subscription.
type subscriptionResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	DueDate  string  `json:"due_date"`
	Category string  `json:"category"`
	Schedule string  `json:"schedule"`
	Notes    string  `json:"notes,omitempty"`
}

func toSubscriptionResponse(sub core.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:       sub.ID,
		Name:     sub.Name,
		Price:    sub.Price,
		Currency: sub.Currency,
		DueDate:  sub.DueDate.String(),
		Category: sub.Category,
		Schedule: string(sub.Schedule),
		Notes:    sub.Notes,
	}
}

// parseSubscription validates the wire shape; domain validation happens
// in the service.
func parseSubscription(r *http.Request) (core.Subscription, bool, string) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return core.Subscription{}, false, "invalid request body"
	}

	var due core.Date
	if req.DueDate != "" {
		parsed, err := core.ParseDate(req.DueDate)
		if err != nil {
			return core.Subscription{}, false, "due_date must be YYYY-MM-DD"
		}
		due = parsed
	}

	return core.Subscription{
		Name:     req.Name,
		Price:    req.Price,
		Currency: req.Currency,
		DueDate:  due,
		Category: req.Category,
		Schedule: core.Schedule(req.Schedule),
		Notes:    req.Notes,
	}, true, ""
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	sub, ok, msg := parseSubscription(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	saved, err := s.subscriptions.Create(r.Context(), userID(r.Context()), sub)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubscriptionResponse(saved))
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriptionResponse(sub))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	sub, err := s.subscriptions.Get(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	sub, ok, msg := parseSubscription(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	saved, err := s.subscriptions.Update(r.Context(), userID(r.Context()), id, sub)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(saved))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	if err := s.subscriptions.Delete(r.Context(), userID(r.Context()), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
