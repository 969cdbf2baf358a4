package main

import (
	"context"
	"log"
	"strings"

	"crop-recommendation/crop"
)

// emitter is the part of socketio.Conn the controller needs.
type emitter interface {
	ID() string
	Emit(eventName string, v ...interface{})
}

type socketController struct {
	handler *crop.Handler
}

func newSocketController(handler *crop.Handler) *socketController {
	return &socketController{handler: handler}
}

// handlePredict runs one prediction for a socket client and answers with
// predictionResult or predictionError carrying the same body as POST /predict.
func (c *socketController) handlePredict(socket emitter, payload string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in handlePredict for socket %s: %v\n", socket.ID(), r)
			socket.Emit("predictionError", crop.PredictionResponse{Success: false, Message: "internal server error during processing"})
		}
	}()

	resp := c.handler.Handle(context.Background(), strings.NewReader(payload))
	if resp.Success {
		socket.Emit("predictionResult", resp)
		return
	}
	socket.Emit("predictionError", resp)
}
