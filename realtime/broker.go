package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
)

// Broker handles Server-Sent Events (SSE) clients and broadcasting.
// The dashboard subscribes here to watch pipeline runs land live.
type Broker struct {
	clients    map[chan []byte]bool
	register   chan chan []byte
	unregister chan chan []byte
	broadcast  chan []byte
	mu         sync.RWMutex
}

// NewBroker creates a new SSE broker
func NewBroker() *Broker {
	return &Broker{
		clients:    make(map[chan []byte]bool),
		register:   make(chan chan []byte),
		unregister: make(chan chan []byte),
		broadcast:  make(chan []byte, 256),
	}
}

// Run starts the broker loop
func (b *Broker) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			log.Printf("SSE Client connected. Total: %d", len(b.clients))

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client)
				log.Printf("SSE Client disconnected. Total: %d", len(b.clients))
			}
			b.mu.Unlock()

		case msg := <-b.broadcast:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client <- msg:
				default:
					// Skip if client buffer is full to prevent blocking
				}
			}
			b.mu.RUnlock()
		}
	}
}

// ServeHTTP handles the SSE endpoint
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	clientChan := make(chan []byte, 10)
	b.register <- clientChan

	notify := r.Context().Done()

	for {
		select {
		case <-notify:
			b.unregister <- clientChan
			return
		case msg := <-clientChan:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			w.(http.Flusher).Flush()
		}
	}
}

// Subscribe registers an out-of-band consumer (the WebSocket bridge)
// and returns its message channel.
func (b *Broker) Subscribe() chan []byte {
	clientChan := make(chan []byte, 10)
	b.register <- clientChan
	return clientChan
}

// Unsubscribe removes a consumer registered via Subscribe.
func (b *Broker) Unsubscribe(clientChan chan []byte) {
	b.unregister <- clientChan
}

// Broadcast sends a message to all connected clients
func (b *Broker) Broadcast(event string, payload interface{}) {
	data := map[string]interface{}{
		"event":   event,
		"payload": payload,
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshalling broadcast message: %v", err)
		return
	}

	select {
	case b.broadcast <- jsonBytes:
	default:
		// Drop if broadcast buffer full
	}
}

// RunStarted announces a pipeline run beginning for a kit. The run ID
// is not minted until the engine finishes, so the event carries only
// the kit and its batch size.
func (b *Broker) RunStarted(kitName string, rowCount int) {
	b.Broadcast("run_started", map[string]interface{}{
		"kit_name":  kitName,
		"row_count": rowCount,
	})
}

// RunCompleted announces a finished pipeline run with its headline
// numbers.
func (b *Broker) RunCompleted(runID, kitName string, rowCount, coreCount int, durationMs int64) {
	b.Broadcast("run_completed", map[string]interface{}{
		"run_id":      runID,
		"kit_name":    kitName,
		"row_count":   rowCount,
		"core_count":  coreCount,
		"duration_ms": durationMs,
	})
}
