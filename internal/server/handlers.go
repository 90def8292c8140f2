package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civicsource/civicsource/internal/backend"
	"github.com/civicsource/civicsource/internal/civic"
	"github.com/civicsource/civicsource/internal/search"
	"github.com/civicsource/civicsource/internal/store"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type procurementRequest struct {
	civic.Need
	PostedDate time.Time `json:"postedDate"`
}

type procurementResponse struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Procurement civic.Procurement `json:"procurement"`
}

type proposalResponse struct {
	Success  bool            `json:"success"`
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Proposal *civic.Proposal `json:"proposal,omitempty"`
}

type proposalsResponse struct {
	Proposals []civic.Proposal `json:"proposals"`
}

type searchResponse struct {
	Businesses []civic.Candidate `json:"businesses"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createProcurement(w http.ResponseWriter, r *http.Request) {
	var req procurementRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := req.Need.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid procurement: %w", err))
		return
	}

	posted := req.PostedDate
	if posted.IsZero() {
		posted = s.now().UTC()
	}

	p, err := s.store.CreateProcurement(r.Context(), civic.Procurement{Need: req.Need, PostedDate: posted})
	if err != nil {
		s.logger.Error("storing procurement", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("could not store procurement"))
		return
	}

	s.logger.Info("procurement received",
		zap.String("procurement_id", p.ID),
		zap.String("title", p.Title),
		zap.String("budget", p.Budget.String()),
	)
	writeJSON(w, http.StatusCreated, procurementResponse{Status: "success", Message: "Procurement received", Procurement: p})
}

func (s *Server) getProcurement(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProcurement(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.logger.Error("loading procurement", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("could not load procurement"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]civic.Procurement{"procurement": p})
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	var p civic.Proposal
	if err := decodeBody(w, r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, proposalResponse{Status: "error", Message: err.Error()})
		return
	}

	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, proposalResponse{Status: "error", Message: fmt.Sprintf("invalid proposal: %s", err)})
		return
	}

	if p.SubmittedDate.IsZero() {
		p.SubmittedDate = s.now().UTC()
	}

	stored, err := s.store.CreateProposal(r.Context(), p)
	if err != nil {
		s.logger.Error("storing proposal", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, proposalResponse{Status: "error", Message: "could not store proposal"})
		return
	}

	s.logger.Info("proposal received",
		zap.String("procurement_id", stored.ProcurementID),
		zap.String("business", stored.BusinessInfo.Name),
		zap.String("price", stored.Price.String()),
	)
	writeJSON(w, http.StatusCreated, proposalResponse{Success: true, Status: "success", Message: "Proposal received", Proposal: &stored})
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := s.store.ListProposals(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("listing proposals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("could not list proposals"))
		return
	}
	if proposals == nil {
		proposals = []civic.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposalsResponse{Proposals: proposals})
}

func (s *Server) searchBusinesses(w http.ResponseWriter, r *http.Request) {
	params, err := decodeSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(params.Query) == "" {
		writeError(w, http.StatusBadRequest, errors.New("query parameter is required"))
		return
	}

	found, err := s.searcher.Search(r.Context(), search.Query{
		Text:     params.Query,
		Location: params.Location,
		Radius:   params.Radius,
		Limit:    params.Limit,
	})
	if err != nil {
		s.logger.Error("searching businesses", zap.Error(err))
		writeError(w, http.StatusBadGateway, errors.New("search failed"))
		return
	}
	if found == nil {
		found = []civic.Candidate{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Businesses: found})
}

// decodeSearchParams reads the query string into the same parameters the
// portal client sends. Numbers arrive as strings and are converted leniently.
func decodeSearchParams(r *http.Request) (backend.SearchParams, error) {
	values := r.URL.Query()
	raw := map[string]interface{}{}
	for _, key := range []string{"query", "location", "radius", "limit"} {
		if v := values.Get(key); v != "" {
			raw[key] = v
		}
	}
	if categories := values["category"]; len(categories) > 0 {
		raw["categories"] = categories
	}

	var params backend.SearchParams
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return params, err
	}
	if err := decoder.Decode(raw); err != nil {
		return params, fmt.Errorf("invalid search parameters: %w", err)
	}
	return params, nil
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid message: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	reply, err := s.replier.Reply(ctx, req.Message)
	if err != nil {
		s.logger.Warn("assistant reply failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, errors.New("assistant unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
