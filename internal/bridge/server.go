package bridge

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"mailbox-bridge/internal/logging"
)

// Server exposes the agent over HTTP: a small status page plus JSON
// endpoints, including command injection for development.
type Server struct {
	Agent *Agent
	tpl   *template.Template
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates a server for the given agent.
func NewServer(agent *Agent) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Agent: agent, tpl: tpl}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/command", s.handleCommand)
	return mux
}

// Start serves until the context is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Snapshot map[string]any
		Status   Status
	}{
		Snapshot: s.Agent.Snapshot(),
		Status:   s.Agent.Status(),
	}
	s.tpl.Execute(w, data)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Agent.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Agent.Status())
}

// handleCommand injects a command into the command buffer. Accepts form
// posts from the index page and JSON bodies.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var name, params string
	if r.Header.Get("Content-Type") == "application/json" {
		var body struct {
			Name       string `json:"command_name"`
			Parameters string `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name, params = body.Name, body.Parameters
	} else {
		name = r.FormValue("command_name")
		params = r.FormValue("parameters")
	}
	if name == "" {
		http.Error(w, "command_name required", http.StatusBadRequest)
		return
	}

	cmd, err := s.Agent.SendCommand(name, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	reqID := uuid.NewString()
	logging.FromContext(r.Context()).Info("command injected",
		"request_id", reqID, "command", cmd.Name, "timestamp", cmd.Timestamp)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"request_id": reqID,
		"command":    cmd,
	})
}
