package http

import (
	"errors"
	"net/http"

	"competition-service/internal/app"
	"competition-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.DrawService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(service *app.DrawService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type subscribedPayload struct {
	CompetitionID string             `json:"competitionId"`
	Draw          *domain.DrawResult `json:"draw"`
}

// ServeWS upgrades the request and streams draw announcements for one competition.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	competitionID := r.URL.Query().Get("competitionId")
	if competitionID == "" {
		http.Error(w, "missing competitionId", http.StatusBadRequest)
		return
	}
	log := h.log.With(zap.String("competitionId", competitionID))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// subscribe before reading the current result so a draw in between is not missed
	updates, cancel := h.service.Subscribe(r.Context(), competitionID)
	defer cancel()

	subscribed := subscribedPayload{CompetitionID: competitionID}
	current, err := h.service.GetDraw(r.Context(), competitionID)
	switch {
	case err == nil:
		subscribed.Draw = &current
	case !errors.Is(err, domain.ErrDrawNotFound):
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write failed", zap.Error(err))
				// unblock the read loop
				_ = conn.Close()
				return
			}
		}
	}()

	// emit queues msg for the writer; false once the writer has given up
	emit := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case result, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "draw", Payload: result}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if emit(outboundMessage[any]{Type: "subscribed", Payload: subscribed}) {
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			var msg outboundMessage[any]
			switch inbound.Type {
			case "verify":
				v, err := h.service.VerifyDraw(r.Context(), competitionID)
				if err != nil {
					msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				} else {
					msg = outboundMessage[any]{Type: "verification", Payload: v}
				}
			default:
				msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
			}
			if !emit(msg) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
