package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_crop",
		"box_overlap",
		"template_locate_segment",
		"template_clone",
		"labels_render",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required field must be declared
			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required field %q has no property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_BoxFields(t *testing.T) {
	boxFields := map[string][]string{
		"image_crop":              {"box"},
		"box_overlap":             {"a", "b"},
		"template_locate_segment": {"box"},
	}

	for _, tool := range GetToolDefinitions() {
		fields, ok := boxFields[tool.Name]
		if !ok {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for _, f := range fields {
			schema, ok := props[f].(map[string]interface{})
			if !ok {
				t.Errorf("%s: missing %s", tool.Name, f)
				continue
			}
			if schema["type"] != "array" || schema["minItems"] != 4 || schema["maxItems"] != 4 {
				t.Errorf("%s.%s: not a 4-number array: %v", tool.Name, f, schema)
			}
		}
	}
}

func TestToolDefinitions_CloneAmbiguityEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "template_clone" {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		policy := props["on_ambiguity"].(map[string]interface{})
		enum, ok := policy["enum"].([]string)
		if !ok || len(enum) != 2 || enum[0] != "abort" || enum[1] != "skip" {
			t.Errorf("on_ambiguity enum: got %v", policy["enum"])
		}
		return
	}
	t.Fatal("template_clone not defined")
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded struct {
		Result struct {
			Tools []Tool `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(decoded.Result.Tools) != len(GetToolDefinitions()) {
		t.Errorf("tools: got %d, want %d", len(decoded.Result.Tools), len(GetToolDefinitions()))
	}
}
