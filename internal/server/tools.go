package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Source Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it is already grayscale or square.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Fingerprint Operations
		{
			Name:        "hash_image",
			Description: "Compute the 256-bit perceptual fingerprint of an image, or of one region of it. Returns the 64-digit hex hash, the 256-character bit string and the four quadrant thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"description": "Hash only this named part of the image",
					},
					"rect": map[string]interface{}{
						"type":        "object",
						"description": "Hash only this pixel rectangle (x2 and y2 exclusive). Ignored when region is set",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "hash_images",
			Description: "Compute fingerprints for several images in parallel. Results keep the input order; a failing file reports an error without affecting the others.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of images hashed in parallel (default from configuration)",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "hash_decode",
			Description: "Decode a 64-digit hex fingerprint into its 256-character bit string. Only the bits are recovered; grayscale data and thresholds are not.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "64 hex digits (0-9, A-F, case-insensitive)",
					},
				},
				"required": []string{"hex"},
			},
		},
		{
			Name:        "hash_preview",
			Description: "Render a fingerprint as a base64 PNG. Give either an image path or a hex hash. The 'bits' layer shows the binary hash; the 'grayscale' layer shows the normalized image and needs a path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "64-digit hex hash (used when path is omitted)",
					},
					"layer": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"bits", "grayscale"},
						"description": "Layer to render. Default 'bits'",
						"default":     "bits",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels per fingerprint cell (1-64, default from configuration)",
					},
					"grid": map[string]interface{}{
						"type":        "object",
						"description": "Draw quadrant boundaries over the preview",
						"properties": map[string]interface{}{
							"color": map[string]interface{}{
								"type":        "string",
								"description": "Line color as #rrggbb. Default #ff0000",
							},
							"cells": map[string]interface{}{
								"type":        "boolean",
								"description": "Also outline every cell (scale 4 and up)",
							},
						},
					},
				},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
