// Package ipc exposes a unix-socket command interface so a second invocation
// of the binary (or a script) can drive the running shell instead of
// launching another instance.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"gemini-desktop/pkg/logger"
)

// SocketPath is where the running instance listens.
const SocketPath = "/tmp/gemini-desktop.sock"

// Commands the socket accepts.
const (
	CmdShowMain        = "show-main"
	CmdToggleQuickChat = "toggle-quick-chat"
	CmdPrint           = "print"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler executes socket commands against the running shell.
type Handler interface {
	ShowMain() error
	ToggleQuickChat() error
	Print() error
}

// Server accepts commands on the unix socket.
type Server struct {
	path     string
	handler  Handler
	log      *logger.Logger
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer builds a server on path. An empty path selects SocketPath.
func NewServer(path string, handler Handler, log *logger.Logger) *Server {
	if path == "" {
		path = SocketPath
	}
	return &Server{path: path, handler: handler, log: log}
}

// Start binds the socket and accepts connections in the background.
func (s *Server) Start() error {
	// Remove a stale socket from a previous run.
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	s.listener = listener

	s.log.Info("Socket server started", "path", s.path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				return // listener closed
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.handleConnection(conn)
			}()
		}
	}()
	return nil
}

// Stop closes the socket and waits for in-flight connections.
func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.wg.Wait()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.Error("Failed to decode request", err)
		return
	}

	s.log.Info("Received request", "command", req.Command)

	var resp Response
	switch req.Command {
	case CmdShowMain:
		if err := s.handler.ShowMain(); err != nil {
			s.log.Error("Failed to show main window", err)
			resp = Response{Status: "error", Message: err.Error()}
		} else {
			resp = Response{Status: "success", Message: "Main window shown"}
		}
	case CmdToggleQuickChat:
		if err := s.handler.ToggleQuickChat(); err != nil {
			s.log.Error("Failed to toggle quick chat", err)
			resp = Response{Status: "error", Message: err.Error()}
		} else {
			resp = Response{Status: "success", Message: "Quick chat toggled"}
		}
	case CmdPrint:
		if err := s.handler.Print(); err != nil {
			s.log.Error("Print command failed", err)
			resp = Response{Status: "error", Message: err.Error()}
		} else {
			resp = Response{Status: "success", Message: "Print job started"}
		}
	default:
		s.log.Error("Unknown command received", fmt.Errorf("command: %s", req.Command))
		resp = Response{Status: "error", Message: "Unknown command"}
	}

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Error("Failed to encode response", err)
	}
}
