// Package server implements the MCP (Model Context Protocol) server for image fingerprinting.
//
// The server exposes the perceptual hash over JSON-RPC 2.0 so MCP clients can
// fingerprint images, decode stored hashes and look at what a hash "sees".
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Source Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Fingerprint Operations:
//   - hash_image: Fingerprint one image (hex, bits, quadrant thresholds)
//   - hash_images: Fingerprint several images in parallel
//   - hash_decode: Decode a hex hash back into its bit string
//   - hash_preview: Render the bits or the normalized image as PNG
//
// # Error Handling
//
// Tool execution errors, including malformed hex hashes, are returned as
// JSON-RPC error responses with:
//   - code: CodeToolFailure (-32000) or a standard JSON-RPC code
//   - message: Human-readable error description
//   - data: The Go error string
//
// The server never exits because of a bad request.
package server
