// Package server implements the MCP (Model Context Protocol) server for the
// label cloner.
//
// The server exposes box geometry, segment location and label cloning as MCP
// tools, so an assistant can label one document of a template and carry the
// labels over to the others.
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
// Image Information:
//   - image_load: Load image and get metadata
//   - image_crop: Extract a labeled box as PNG
//
// Box Geometry:
//   - box_overlap: Overlap ratio, intersection and orientation of two boxes
//
// Template Cloning:
//   - template_locate_segment: Find a source segment in a target image
//   - template_clone: Project a label document onto a target image
//
// Diagnostics:
//   - labels_render: Draw a label document's boxes on an image
//
// # Configuration
//
// Matching and cloning parameters come from a config.Config. SetConfig swaps
// it at runtime, which is how a watched config file reaches a running server;
// each tool call reads the configuration once when it starts.
//
// # Image Caching
//
// Images are cached by path and reused across tool calls. The cache persists
// for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A segment that cannot be found is not an error: template_locate_segment
// reports found=false with the best score.
//
// # Usage
//
//	srv := server.New(cfg, logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package server
