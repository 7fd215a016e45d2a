package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
	"github.com/ironsheep/image-hash-mcp/internal/hasher"
	"github.com/ironsheep/image-hash-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "hash_image", "hash_decode").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code
// CodeToolFailure.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug() {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return errorResponse(req.ID, CodeToolFailure, "Tool execution failed", err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResponse(req.ID, CodeToolFailure, "Tool execution failed", fmt.Sprintf("encode result: %v", err))
	}

	return resultResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
	})
}

// toolHandler runs one tool on its raw JSON arguments.
type toolHandler func(s *Server, args json.RawMessage) (interface{}, error)

// toolHandlers maps each tool in GetToolDefinitions to its implementation.
var toolHandlers = map[string]toolHandler{
	"image_load":       (*Server).handleImageLoad,
	"image_dimensions": (*Server).handleImageDimensions,
	"hash_image":       (*Server).handleHashImage,
	"hash_images":      (*Server).handleHashImages,
	"hash_decode":      (*Server).handleHashDecode,
	"hash_preview":     (*Server).handleHashPreview,
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	handler, ok := toolHandlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return handler(s, args)
}

// ThresholdsResult lists the brightness threshold of each quadrant.
type ThresholdsResult struct {
	TopLeft     uint8 `json:"top_left"`
	TopRight    uint8 `json:"top_right"`
	BottomLeft  uint8 `json:"bottom_left"`
	BottomRight uint8 `json:"bottom_right"`
}

// HashResult is the JSON form of one fingerprint.
type HashResult struct {
	Path       string            `json:"path,omitempty"`
	Hex        string            `json:"hex,omitempty"`
	Bits       string            `json:"bits,omitempty"`
	Thresholds *ThresholdsResult `json:"thresholds,omitempty"`
	Partial    bool              `json:"partial"`
	Size       int               `json:"size"`
	Error      string            `json:"error,omitempty"`
}

// newHashResult describes fp. Partial fingerprints carry no thresholds.
func newHashResult(path string, fp *fingerprint.Fingerprint) *HashResult {
	res := &HashResult{
		Path:    path,
		Hex:     fp.Hex(),
		Bits:    fp.String(),
		Partial: fp.Partial(),
		Size:    fingerprint.Size,
	}
	if !fp.Partial() {
		t := fp.Thresholds()
		res.Thresholds = &ThresholdsResult{
			TopLeft:     t.Get(fingerprint.TopLeft),
			TopRight:    t.Get(fingerprint.TopRight),
			BottomLeft:  t.Get(fingerprint.BottomLeft),
			BottomRight: t.Get(fingerprint.BottomRight),
		}
	}
	return res
}

// === Source Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Fingerprint Handlers ===

type hashImageArgs struct {
	Path   string          `json:"path"`
	Region string          `json:"region"`
	Rect   *imaging.Region `json:"rect"`
}

func (s *Server) handleHashImage(args json.RawMessage) (interface{}, error) {
	var a hashImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	fp, err := s.hasher.HashFileRegion(a.Path, hasher.Selection{Name: a.Region, Rect: a.Rect})
	if err != nil {
		return nil, err
	}
	return newHashResult(a.Path, fp), nil
}

type hashImagesArgs struct {
	Paths   []string `json:"paths"`
	Workers int      `json:"workers"`
}

// HashBatchResult holds the fingerprints of a hash_images call.
type HashBatchResult struct {
	Results []*HashResult `json:"results"`
	Failed  int           `json:"failed"`
}

func (s *Server) handleHashImages(args json.RawMessage) (interface{}, error) {
	var a hashImagesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}
	if a.Workers <= 0 {
		a.Workers = s.cfg.Workers
	}

	batch := &HashBatchResult{Results: make([]*HashResult, 0, len(a.Paths))}
	for _, r := range s.hasher.HashFiles(s.ctx, a.Paths, a.Workers) {
		if r.Err != nil {
			batch.Failed++
			batch.Results = append(batch.Results, &HashResult{Path: r.Path, Error: r.Err.Error()})
			continue
		}
		batch.Results = append(batch.Results, newHashResult(r.Path, r.Fingerprint))
	}
	return batch, nil
}

type hashDecodeArgs struct {
	Hex string `json:"hex"`
}

func (s *Server) handleHashDecode(args json.RawMessage) (interface{}, error) {
	var a hashDecodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	fp, err := fingerprint.FromHex(a.Hex)
	if err != nil {
		return nil, err
	}
	return newHashResult("", fp), nil
}

type hashPreviewArgs struct {
	Path  string               `json:"path"`
	Hex   string               `json:"hex"`
	Layer string               `json:"layer"`
	Scale int                  `json:"scale"`
	Grid  *imaging.GridOptions `json:"grid"`
}

func (s *Server) handleHashPreview(args json.RawMessage) (interface{}, error) {
	var a hashPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Layer == "" {
		a.Layer = imaging.LayerBits
	}
	if a.Scale == 0 {
		a.Scale = s.cfg.PreviewScale
	}

	var fp *fingerprint.Fingerprint
	var err error
	switch {
	case a.Path != "":
		fp, err = s.hasher.HashFile(a.Path)
	case a.Hex != "":
		fp, err = fingerprint.FromHex(a.Hex)
	default:
		return nil, errors.New("either path or hex is required")
	}
	if err != nil {
		return nil, err
	}
	return imaging.RenderFingerprint(fp, a.Layer, a.Scale, a.Grid)
}
