package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/image-hash-mcp/internal/config"
	"github.com/ironsheep/image-hash-mcp/internal/hasher"
	"github.com/ironsheep/image-hash-mcp/internal/imaging"
)

// ServerName and ServerVersion are reported during the initialize handshake.
const (
	ServerName    = "image-hash-mcp"
	ServerVersion = "0.2.0"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeToolFailure    = -32000
)

// maxRequestSize bounds a single request line.
const maxRequestSize = 1024 * 1024

// Server answers MCP requests with the image hashing tools.
type Server struct {
	cfg    *config.Config
	cache  *imaging.ImageCache
	hasher *hasher.Hasher

	// ctx is the context of the running Serve call; batch tools stop
	// early when it is cancelled.
	ctx context.Context
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func resultResponse(id interface{}, result interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message, Data: data},
	}
}

// New creates a server. A nil cfg uses config.Default.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	cache := imaging.NewImageCache()
	return &Server{
		cfg:    cfg,
		cache:  cache,
		hasher: hasher.New(cache, cfg.NormalizeOptions(), hasher.WithDebugLogging(cfg.Debug())),
		ctx:    context.Background(),
	}
}

// Run serves MCP requests from stdin to stdout until stdin closes or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes one response
// per line to w. Notifications get no response. A line that is not JSON is
// answered with a parse error and serving continues.
//
// Serve returns when r is exhausted or ctx is done, even while r is idle.
// In the latter case the goroutine reading r stays blocked until r yields
// or is closed.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.ctx = ctx

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(r, done)
	encoder := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read request: %w", err)
				}
				return nil
			}
			line = l
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		resp := s.handleLine(line)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// readLines scans r on its own goroutine and sends each non-empty line.
// lines is closed at EOF, after the scanner error (or nil) is put on
// readErr. Closing done stops the sender.
func readLines(r io.Reader, done <-chan struct{}) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
		for scanner.Scan() {
			if len(scanner.Bytes()) == 0 {
				continue
			}
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}

// handleLine decodes and answers one request line.
func (s *Server) handleLine(line []byte) *MCPResponse {
	var req MCPRequest
	if err := json.Unmarshal(line, &req); err != nil {
		log.Printf("Failed to parse request: %v", err)
		return errorResponse(nil, CodeParseError, "Parse error", err.Error())
	}
	if s.cfg.Debug() {
		log.Printf("request %v: %s", req.ID, req.Method)
	}
	return s.handleRequest(&req)
}

// handleRequest dispatches on the method name. It returns nil for
// notifications.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return resultResponse(req.ID, map[string]interface{}{})
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
	})
}
