package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"semcanvas/application/commands"
	"semcanvas/application/commands/bus"
	"semcanvas/application/queries"
	querybus "semcanvas/application/queries/bus"
	"semcanvas/application/services/autocomplete"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/pkg/common"
)

// AutocompleteHandler serves @-reference completion for text fields.
// The engine itself is stateless; every request carries the field text
// and caret, and the known candidate set is read fresh per request.
type AutocompleteHandler struct {
	engine     *autocomplete.Engine
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewAutocompleteHandler creates a new autocomplete handler
func NewAutocompleteHandler(engine *autocomplete.Engine, commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *AutocompleteHandler {
	return &AutocompleteHandler{engine: engine, commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// AutocompleteRequest is the request body for recomputing completion
// state after a keystroke. Caret is a rune offset into Text.
type AutocompleteRequest struct {
	Text  string `json:"text"`
	Caret int    `json:"caret"`
}

// CandidateView is the render shape of one ranked candidate
type CandidateView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	IsNew bool   `json:"isNew,omitempty"`
}

// AutocompleteResponse carries the recomputed completion state
type AutocompleteResponse struct {
	Active          bool            `json:"active"`
	Query           string          `json:"query,omitempty"`
	TriggerPosition int             `json:"triggerPosition,omitempty"`
	Candidates      []CandidateView `json:"candidates"`
	SelectedIndex   int             `json:"selectedIndex"`
}

// CommitCompletionRequest is the request body for committing a chosen
// candidate into the field text. X and Y place a newly created artifact.
type CommitCompletionRequest struct {
	Text  string  `json:"text"`
	Caret int     `json:"caret"`
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Type  string  `json:"type,omitempty"`
	IsNew bool    `json:"isNew,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
}

// CommitCompletionResponse carries the rewritten text and caret
type CommitCompletionResponse struct {
	Text  string `json:"text"`
	Caret int    `json:"caret"`
}

// Update handles POST /autocomplete
func (h *AutocompleteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req AutocompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}

	known, err := h.knownCandidates(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	state := h.engine.Update(req.Text, req.Caret, known)
	common.RespondJSON(w, http.StatusOK, stateToResponse(state))
}

// Commit handles POST /autocomplete/commit. When the chosen candidate
// is the synthetic "create new" entry the artifact is created first so
// the inserted reference resolves on the next parse.
func (h *AutocompleteHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if req.ID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "id is required")
		return
	}

	known, err := h.knownCandidates(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	state := h.engine.Update(req.Text, req.Caret, known)
	if !state.Active {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "no completion is active at the given caret")
		return
	}

	if req.IsNew {
		artType, terr := valueobjects.ParseArtifactType(req.Type)
		if terr != nil {
			artType = valueobjects.TypeConcept
		}
		name := req.Name
		if name == "" {
			name = req.ID
		}
		cmd := commands.CreateArtifactCommand{
			Name:   name,
			Type:   artType.String(),
			X:      req.X,
			Y:      req.Y,
			Source: clientSource(r),
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			common.RespondAppError(w, err)
			return
		}
	}

	text, caret := state.Commit(req.Text, req.Caret, autocomplete.Candidate{ID: req.ID, Name: req.Name})
	common.RespondJSON(w, http.StatusOK, CommitCompletionResponse{Text: text, Caret: caret})
}

// knownCandidates projects the stored artifacts onto the engine's
// candidate shape
func (h *AutocompleteHandler) knownCandidates(r *http.Request) ([]autocomplete.Candidate, error) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListArtifactsQuery{})
	if err != nil {
		return nil, err
	}
	views, _ := result.([]queries.ArtifactView)

	known := make([]autocomplete.Candidate, 0, len(views))
	for _, v := range views {
		artType, terr := valueobjects.ParseArtifactType(v.Type)
		if terr != nil {
			artType = valueobjects.TypeConcept
		}
		known = append(known, autocomplete.Candidate{ID: v.ID, Name: v.Name, Type: artType})
	}
	return known, nil
}

func stateToResponse(state autocomplete.State) AutocompleteResponse {
	candidates := make([]CandidateView, 0, len(state.Candidates))
	for _, c := range state.Candidates {
		candidates = append(candidates, CandidateView{
			ID:    c.ID,
			Name:  c.Name,
			Type:  c.Type.String(),
			IsNew: c.IsNew,
		})
	}
	return AutocompleteResponse{
		Active:          state.Active,
		Query:           state.Query,
		TriggerPosition: state.TriggerPosition,
		Candidates:      candidates,
		SelectedIndex:   state.SelectedIndex,
	}
}
