package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/railwayai/railwayai/realtime"
)

// conflictObject answers websocket requests against the "conflicts"
// object, generalized from the teacher's simulationObject/dispatch shape
// in hub_simulation.go.
type conflictObject struct{ app *App }

func (c *conflictObject) dispatch(h *Hub, req Request, conn *connection) {
	switch req.Action {
	case "list":
		conflicts := c.app.detectConflicts()
		conn.pushChan <- newOkResponse(req.ID, conflicts)
	case "plan":
		result := c.app.planAll(context.Background())
		conn.pushChan <- newOkResponse(req.ID, result)
	default:
		conn.pushChan <- newErrorResponse(req.ID, fmt.Errorf("unknown action %q for object %q", req.Action, req.Object))
	}
}

// realtimeObject answers websocket requests against the "realtime"
// object: position updates pushed in, predictions/adjustments pushed
// back, generalized from hub_suggestions.go's dispatch shape.
type realtimeObject struct{ app *App }

func (r *realtimeObject) dispatch(h *Hub, req Request, conn *connection) {
	switch req.Action {
	case "update_position":
		pos, err := decodePositionFromData(req.Data)
		if err != nil {
			conn.pushChan <- newErrorResponse(req.ID, err)
			return
		}
		r.app.realtime.UpdatePosition(pos)
		conn.pushChan <- newOkResponse(req.ID, nil)
	case "predict":
		predicted := r.app.realtime.PredictConflicts()
		conn.pushChan <- newOkResponse(req.ID, predicted)
	case "optimize":
		adjustments := r.app.realtime.Optimize()
		conn.pushChan <- newOkResponse(req.ID, adjustments)
	default:
		conn.pushChan <- newErrorResponse(req.ID, fmt.Errorf("unknown action %q for object %q", req.Action, req.Object))
	}
}

func decodePositionFromData(data map[string]interface{}) (realtime.TrainPosition, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return realtime.TrainPosition{}, err
	}
	var pos realtime.TrainPosition
	if err := json.Unmarshal(b, &pos); err != nil {
		return realtime.TrainPosition{}, err
	}
	return pos, nil
}
