package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/pkg/httpcontext"
	taskUC "github.com/taskpulse/backend/usecase/task"
)

type DashboardHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewDashboardHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Aggregate task statistics for the current user
// @Tags dashboard
// @Router /api/v1/dashboard/stats [get]
func (h *DashboardHandler) GetStats(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.TaskStats(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}
