package clientsinterests

import (
	"context"
	"strconv"

	"scoring-api/internal/api"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/scoring"
	"scoring-api/internal/store"
)

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
	ids := req.Args.IDs("client_ids")
	req.Diag["nclients"] = len(ids)

	response := make(map[string]interface{}, len(ids))
	for _, id := range ids {
		interests, err := scoring.Interests(ctx, h.store, id)
		if err != nil {
			return nil, err
		}
		response[strconv.FormatInt(id, 10)] = interests
	}

	h.logger.Debug("interests resolved", map[string]interface{}{
		"nclients": len(ids),
	})
	return response, nil
}
