package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vanban-tech/vanban/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are not restricted; the CORS origin only applies to
		// the plain HTTP endpoints.
		return true
	},
}

// ExtractRequest is a websocket extraction request. Document bytes are
// base64 in the JSON encoding.
type ExtractRequest struct {
	Filename string `json:"filename"`
	Document []byte `json:"document"`
}

// ExtractEvent is a websocket message sent during extraction.
type ExtractEvent struct {
	Type    string                   `json:"type"` // "progress", "page_error", "result", "error"
	Percent int                      `json:"percent,omitempty"`
	Message string                   `json:"message,omitempty"`
	Page    int                      `json:"page,omitempty"`
	Result  *pipeline.DocumentResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// wsProgress streams pipeline progress over one websocket connection.
type wsProgress struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *wsProgress) send(event ExtractEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := p.conn.WriteJSON(event); err == nil {
		websocketMessagesTotal.WithLabelValues("sent").Inc()
	}
}

func (p *wsProgress) OnStart(totalPages int) {
	p.send(ExtractEvent{Type: "progress", Percent: 0, Message: "Khởi tạo..."})
}

func (p *wsProgress) OnProgress(percent int, msg string) {
	p.send(ExtractEvent{Type: "progress", Percent: percent, Message: msg})
}

func (p *wsProgress) OnComplete() {}

func (p *wsProgress) OnError(page int, err error) {
	p.send(ExtractEvent{Type: "page_error", Page: page, Error: err.Error()})
}

// extractWebSocketHandler streams extraction progress: the client sends
// one ExtractRequest and receives progress events followed by the result.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	conn.SetReadLimit(s.maxUploadMB * 1024 * 1024 * 2)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	websocketMessagesTotal.WithLabelValues("received").Inc()

	progress := &wsProgress{conn: conn}

	var req ExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		progress.send(ExtractEvent{Type: "error", Error: "invalid request: " + err.Error()})
		return
	}
	if len(req.Document) == 0 {
		progress.send(ExtractEvent{Type: "error", Error: "empty document"})
		return
	}

	path, err := s.saveWebSocketUpload(req)
	if err != nil {
		progress.send(ExtractEvent{Type: "error", Error: "store upload: " + err.Error()})
		return
	}
	defer func() { _ = os.Remove(path) }()

	processor, err := s.factory(progress)
	if err != nil {
		progress.send(ExtractEvent{Type: "error", Error: "pipeline unavailable: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	result, err := processor.ProcessDocument(ctx, path)
	if err != nil {
		documentsProcessed.WithLabelValues("error").Inc()
		progress.send(ExtractEvent{Type: "error", Error: err.Error()})
		return
	}

	documentsProcessed.WithLabelValues("ok").Inc()
	pagesProcessed.Add(float64(result.Pages))
	progress.send(ExtractEvent{Type: "result", Result: result})
}

func (s *Server) saveWebSocketUpload(req ExtractRequest) (string, error) {
	ext := filepath.Ext(req.Filename)
	if ext == "" {
		ext = ".bin"
	}
	tmp, err := os.CreateTemp("", "vanban-ws-*"+ext)
	if err != nil {
		return "", err
	}
	defer func() { _ = tmp.Close() }()

	if _, err := tmp.Write(req.Document); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
