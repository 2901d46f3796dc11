package transformHandler

import (
	"context"

	"github.com/gofiber/websocket/v2"

	"BiasLens/internal/middleware"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/handlerUtil"
	"BiasLens/pkg/log"
)

// streamRun pushes a run snapshot after every transition until the run ends
// or the client goes away.
func (h *TransformHandler) streamRun(c *websocket.Conn) {
	runID := c.Params("id")
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	ctx := contextPkg.WithRequestID(context.Background(), requestID)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"run_id":     runID,
	}).Debug("Run progress client connected")
	defer h.log.WithFields(log.Fields{
		"request_id": requestID,
		"run_id":     runID,
	}).Debug("Run progress client disconnected")

	updates, cancel, err := h.transformService.Subscribe(ctx, runID)
	if err != nil {
		if writeErr := c.WriteJSON(handlerUtil.ErrorResponse{Error: err.Error(), TraceID: requestID}); writeErr != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      writeErr.Error(),
			}).Warn("Failed to write websocket error")
		}
		return
	}
	defer cancel()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
			if err := c.WriteJSON(snapshot); err != nil {
				h.log.WithFields(log.Fields{
					"request_id": requestID,
					"run_id":     runID,
					"error":      err.Error(),
				}).Warn("Failed to push run snapshot")
				return
			}
		case <-gone:
			return
		}
	}
}
