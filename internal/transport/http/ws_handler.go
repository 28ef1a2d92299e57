package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-review-service/internal/app"
)

type WSHandler struct {
	service  *app.ReviewService
	maxBody  int64
	upgrader websocket.Upgrader
}

// NewWSHandler caps inbound messages at maxBody bytes; 0 means no limit.
func NewWSHandler(service *app.ReviewService, maxBody int64) *WSHandler {
	return &WSHandler{
		service: service,
		maxBody: maxBody,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pagePayload struct {
	HTML string `json:"html"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets. Clients send "extract" or
// "ingest" messages carrying page markup and receive every "ingested" event.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	if h.maxBody > 0 {
		conn.SetReadLimit(h.maxBody)
	}

	events, cancel := h.service.Subscribe(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Only this goroutine writes to conn. After a write error it keeps
	// draining send so the reader never blocks.
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				failed = true
				conn.Close()
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "ingested", Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "ready", Payload: struct{}{}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var page pagePayload
		if inbound.Type == "extract" || inbound.Type == "ingest" {
			if err := json.Unmarshal(inbound.Payload, &page); err != nil {
				send <- errorMessage("invalid page payload")
				continue
			}
		}
		switch inbound.Type {
		case "extract":
			paper, err := h.service.Extract(page.HTML)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "paper", Payload: paperResponse{Paper: paper, Tally: paper.Tally()}}
		case "ingest":
			stored, err := h.service.Ingest(r.Context(), page.HTML)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "stored", Payload: storedResponse{StoredPaper: stored, Tally: stored.Paper.Tally()}}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
