package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"staff_row_profile",
		"staff_detect_lines",
		"staff_group_lines",
		"staff_check_candidate",
		"staff_find_staves",
		"staff_overlay",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
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
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("InputSchema required missing")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required property %q is not defined", r)
				}
			}

			// Schemas must serialize for tools/list
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_ImageToolsShareGridOptions(t *testing.T) {
	imageTools := []string{"staff_row_profile", "staff_detect_lines", "staff_find_staves", "staff_overlay"}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range imageTools {
		props := toolMap[name].InputSchema["properties"].(map[string]interface{})
		for _, opt := range []string{"path", "channel", "blur_radius", "invert", "region"} {
			if _, ok := props[opt]; !ok {
				t.Errorf("%s: missing property %q", name, opt)
			}
		}
	}

	overlay := toolMap["staff_overlay"].InputSchema["properties"].(map[string]interface{})
	for _, opt := range []string{"line_color", "staff_color", "opacity"} {
		if _, ok := overlay[opt]; !ok {
			t.Errorf("staff_overlay: missing property %q", opt)
		}
	}
	if _, ok := toolMap["staff_row_profile"].InputSchema["properties"].(map[string]interface{})["line_color"]; ok {
		t.Error("overlay properties leaked into staff_row_profile")
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(nil, nil)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: "list"})

	if resp.ID != "list" {
		t.Errorf("ID: got %v, want list", resp.ID)
	}
	result := resp.Result.(map[string]interface{})
	if _, ok := result["tools"].([]Tool); !ok {
		t.Fatal("tools should be a slice of Tool")
	}
}
