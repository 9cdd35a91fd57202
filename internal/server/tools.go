package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func boxSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       map[string]interface{}{"type": "number"},
		"minItems":    4,
		"maxItems":    4,
	}
}

func pathSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image stays cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a labeled box [x0, y0, x1, y1] from an image and return it as base64-encoded PNG. Use this to inspect what a label covers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema("Absolute path to the image file"),
					"box":  boxSchema("Box to crop as [x0, y0, x1, y1]"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "box"},
			},
		},

		// Box Geometry
		{
			Name:        "box_overlap",
			Description: "Compare two boxes: overlap ratio (intersection over the smaller area), intersection box, and where b lies relative to a (down, up, right, left).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": boxSchema("Reference box [x0, y0, x1, y1]"),
					"b": boxSchema("Compared box [x0, y0, x1, y1]"),
				},
				"required": []string{"a", "b"},
			},
		},

		// Template Cloning
		{
			Name:        "template_locate_segment",
			Description: "Crop a box from a source image and find where that segment appears in a target image. Returns found=false when the best correlation score is below the threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": pathSchema("Absolute path to the labeled source image"),
					"target": pathSchema("Absolute path to the image to search"),
					"box":    boxSchema("Segment of the source image as [x0, y0, x1, y1]"),
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Minimum correlation score. Defaults to the configured matching threshold",
					},
				},
				"required": []string{"source", "target", "box"},
			},
		},
		{
			Name:        "template_clone",
			Description: "Project the labels of a source image onto a target image of the same template. Labels are given inline or as a path to a YAML/JSON label document.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": pathSchema("Absolute path to the labeled source image"),
					"target": pathSchema("Absolute path to the unlabeled target image"),
					"labels": map[string]interface{}{
						"type":        "object",
						"description": "Inline label document with relation, static, variable_one and variable_many box lists",
					},
					"labels_path": pathSchema("Path to a label document, used when labels is not given"),
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Relations cloned concurrently. Defaults to the configured value",
					},
					"on_ambiguity": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"abort", "skip"},
						"description": "abort fails the run on an ambiguous relation, skip reports and continues",
					},
				},
				"required": []string{"source", "target"},
			},
		},

		// Diagnostics
		{
			Name:        "labels_render",
			Description: "Draw a label document's boxes on an image, one color per category, and return it as base64-encoded PNG. Use this to check a cloned result by eye.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathSchema("Image to draw on. Defaults to the image named by the label document"),
					"labels": map[string]interface{}{
						"type":        "object",
						"description": "Inline label document with relation, static, variable_one and variable_many box lists",
					},
					"labels_path": pathSchema("Path to a label document, used when labels is not given"),
					"numbered": map[string]interface{}{
						"type":        "boolean",
						"description": "Tag each box with its index inside its category",
						"default":     false,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
