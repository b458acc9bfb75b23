package ipc

import (
	"encoding/json"
	"net"

	"gemini-desktop/pkg/logger"
)

// SendCommand connects to the running instance's socket and issues command.
// path may be empty to use SocketPath.
func SendCommand(path, command string, log *logger.Logger) (Response, error) {
	if path == "" {
		path = SocketPath
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		log.Error("Failed to connect to socket server", err)
		return Response{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(Request{Command: command}); err != nil {
		log.Error("Failed to encode request", err)
		return Response{}, err
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		log.Error("Failed to decode response", err)
		return Response{}, err
	}

	log.Debug("Response received", "status", resp.Status, "message", resp.Message)
	return resp, nil
}
