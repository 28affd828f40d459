package match_waitlist

import (
	"errors"
	"net/http"

	"github.com/lumispa/spa-core/internal/api/handlers"
	matchWaitlist "github.com/lumispa/spa-core/internal/usecase/match_waitlist"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSlot        = "некорректное описание слота"
)

type Handler struct {
	useCase MatchWaitlistUseCase
	logger  Logger
}

func NewHandler(useCase MatchWaitlistUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/waitlist/match
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /waitlist/match - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /waitlist/match - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlot)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, matchWaitlist.ErrInvalidInput):
			h.logger.Warn("POST /waitlist/match - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		default:
			h.logger.Error("POST /waitlist/match - Failed to match: branch_id=%d, error=%v", req.BranchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist/match - Matched %d entries for branch_id=%d", len(result.Matched), req.BranchID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
