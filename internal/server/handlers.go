package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/template-cloner/internal/cloner"
	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/imaging"
	"github.com/ironsheep/template-cloner/internal/labels"
	"github.com/ironsheep/template-cloner/internal/locate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "template_clone").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "box_overlap":
		return s.handleBoxOverlap(args)
	case "template_locate_segment":
		return s.handleLocateSegment(ctx, args)
	case "template_clone":
		return s.handleClone(ctx, args)
	case "labels_render":
		return s.handleRenderLabels(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON renders v as indented JSON for a text content block.
// Tool results are plain structs, so a marshal error yields "".
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Info(a.Path)
}

type imageCropArgs struct {
	Path  string       `json:"path"`
	Box   geometry.Box `json:"box"`
	Scale float64      `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.Box, a.Scale)
}

// === Geometry Handlers ===

type boxOverlapArgs struct {
	A geometry.Box `json:"a"`
	B geometry.Box `json:"b"`
}

type boxOverlapResult struct {
	Ratio        float64       `json:"ratio"`
	Intersects   bool          `json:"intersects"`
	Intersection *geometry.Box `json:"intersection,omitempty"`
	Orientation  string        `json:"orientation"`
}

func (s *Server) handleBoxOverlap(args json.RawMessage) (interface{}, error) {
	var a boxOverlapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res := &boxOverlapResult{
		Ratio:       geometry.OverlapRatio(a.A, a.B),
		Orientation: geometry.RelativeOrientation(a.A, a.B).String(),
	}
	if in, ok := geometry.Intersect(a.A, a.B); ok {
		res.Intersects = true
		res.Intersection = &in
	}
	return res, nil
}

// === Template Handlers ===

type locateSegmentArgs struct {
	Source    string       `json:"source"`
	Target    string       `json:"target"`
	Box       geometry.Box `json:"box"`
	Threshold float64      `json:"threshold"`
}

type locateSegmentResult struct {
	Found     bool          `json:"found"`
	Box       *geometry.Box `json:"box,omitempty"`
	Score     float64       `json:"score,omitempty"`
	Threshold float64       `json:"threshold"`
}

func (s *Server) handleLocateSegment(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a locateSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	source, target, err := s.loadPair(a.Source, a.Target)
	if err != nil {
		return nil, err
	}

	cfg := s.currentConfig()
	threshold := a.Threshold
	if threshold <= 0 {
		threshold = cfg.Matching.Threshold
	}
	loc := locate.New(cfg.Matcher(), threshold)

	found, err := loc.Locate(ctx, source, a.Box, target)
	var nf *locate.SegmentNotFoundError
	if errors.As(err, &nf) {
		return &locateSegmentResult{Found: false, Score: nf.Score, Threshold: loc.Threshold}, nil
	}
	if err != nil {
		return nil, err
	}
	return &locateSegmentResult{Found: true, Box: &found, Threshold: loc.Threshold}, nil
}

type cloneArgs struct {
	Source      string          `json:"source"`
	Target      string          `json:"target"`
	Labels      json.RawMessage `json:"labels"`
	LabelsPath  string          `json:"labels_path"`
	Workers     int             `json:"workers"`
	OnAmbiguity string          `json:"on_ambiguity"`
}

func (s *Server) handleClone(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cloneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	doc, err := loadDocument(a.Labels, a.LabelsPath)
	if err != nil {
		return nil, err
	}

	source, target, err := s.loadPair(a.Source, a.Target)
	if err != nil {
		return nil, err
	}

	cfg := s.currentConfig()
	opts := cfg.ClonerOptions()
	if a.Workers > 0 {
		opts.Workers = a.Workers
	}
	if a.OnAmbiguity != "" {
		opts.OnAmbiguity = cloner.Policy(a.OnAmbiguity)
	}

	c, err := cloner.New(cfg.Locator(), opts, s.logger)
	if err != nil {
		return nil, err
	}
	res, err := c.Clone(ctx, source, target, doc.Labels)
	if err != nil {
		return nil, err
	}
	return labels.NewReport(res, a.Source, a.Target), nil
}

func (s *Server) loadPair(sourcePath, targetPath string) (source, target image.Image, err error) {
	if source, err = s.cache.Load(sourcePath); err != nil {
		return nil, nil, fmt.Errorf("source: %w", err)
	}
	if target, err = s.cache.Load(targetPath); err != nil {
		return nil, nil, fmt.Errorf("target: %w", err)
	}
	return source, target, nil
}

type renderLabelsArgs struct {
	Path       string          `json:"path"`
	Labels     json.RawMessage `json:"labels"`
	LabelsPath string          `json:"labels_path"`
	Numbered   bool            `json:"numbered"`
}

func (s *Server) handleRenderLabels(args json.RawMessage) (interface{}, error) {
	var a renderLabelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := loadDocument(a.Labels, a.LabelsPath)
	if err != nil {
		return nil, err
	}
	path := a.Path
	if path == "" {
		path = doc.Image
	}
	if path == "" {
		return nil, fmt.Errorf("path is required when the label document names no image")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.Overlay(img, labels.Layers(doc.Labels), a.Numbered)
}

// loadDocument reads a label document given inline or by path. Inline wins.
func loadDocument(inline json.RawMessage, path string) (*labels.Document, error) {
	switch {
	case len(inline) > 0 && string(inline) != "null":
		return labels.Parse(inline)
	case path != "":
		return labels.LoadFile(path)
	}
	return nil, fmt.Errorf("labels or labels_path is required")
}
