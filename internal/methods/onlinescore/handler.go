package onlinescore

import (
	"context"

	"scoring-api/internal/api"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/scoring"
	"scoring-api/internal/store"
)

// adminScore is returned to the admin identity without consulting the
// store.
const adminScore = 42.0

type Handler struct {
	store  *store.Store
	logger logger.Logger
}

func NewHandler(st *store.Store, log logger.Logger) *Handler {
	return &Handler{
		store:  st,
		logger: log.WithFields(map[string]interface{}{"method": MethodName}),
	}
}

func (h *Handler) Execute(ctx context.Context, req *api.Request) (map[string]interface{}, error) {
	var score float64
	if req.Envelope.Admin {
		score = adminScore
	} else {
		score = scoring.Score(ctx, h.store, personFromBound(req.Args))
	}

	req.Diag["has"] = req.Args.NonEmpty()

	h.logger.Debug("score computed", map[string]interface{}{
		"score": score,
		"has":   req.Args.NonEmpty(),
	})
	return map[string]interface{}{"score": score}, nil
}
