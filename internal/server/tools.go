package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// gridProperties are the pixel grid options shared by every tool that reads
// an image. Omitted values fall back to the [detection] configuration.
func gridProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the score image",
		},
		"channel": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"luma", "lightness"},
			"description": "How color pixels become intensities: BT.601 luma or CIE L* lightness",
		},
		"blur_radius": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur radius applied before sampling. 0 disables blurring",
		},
		"invert": map[string]interface{}{
			"type":        "boolean",
			"description": "Invert intensities for light lines on a dark background",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Analyze only this rectangle. Rows in the result are relative to y1",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func segmentSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"start": map[string]interface{}{
				"type":        "integer",
				"description": "First row of the line",
			},
			"thickness": map[string]interface{}{
				"type":        "integer",
				"description": "Number of rows in the line",
			},
		},
		"required": []string{"start", "thickness"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a score image and return its dimensions, format and color depth. The decoded image is cached for later staff_* calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Pipeline stages
		{
			Name:        "staff_row_profile",
			Description: "Compute the mean intensity of every pixel row (0 = black, 255 = white) and the dark-row threshold (mean minus sample standard deviation).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gridProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "staff_detect_lines",
			Description: "Classify each pixel row as dark (part of a horizontal line) or background. Returns the boolean row mask, the threshold used and the grouped line segments.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gridProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "staff_group_lines",
			Description: "Group consecutive dark rows of a row mask into line segments with a start row and thickness.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mask": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "boolean"},
						"description": "Row mask, top row first. true marks a dark row",
					},
				},
				"required": []string{"mask"},
			},
		},
		{
			Name:        "staff_check_candidate",
			Description: "Check whether five line segments form a regular staff: similar line thickness and similar spacing, both within the thinnest line's thickness.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"segments": map[string]interface{}{
						"type":        "array",
						"items":       segmentSchema(),
						"minItems":    5,
						"maxItems":    5,
						"description": "Exactly five segments ordered top to bottom",
					},
				},
				"required": []string{"segments"},
			},
		},
		{
			Name:        "staff_find_staves",
			Description: "Run the full pipeline on an image and return every regular five-line staff with its rows and measurements.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(gridProperties(), map[string]interface{}{
					"include_profile": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return per-row values and the row mask. Default false",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "staff_overlay",
			Description: "Render detected lines onto the image and return it as base64-encoded PNG. Staff lines and other dark bands use different colors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(gridProperties(), map[string]interface{}{
					"line_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color for dark bands outside staves, e.g. \"#FF0000\"",
					},
					"staff_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color for staff lines",
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Blend factor toward the band color, 0-1",
					},
				}),
				"required": []string{"path"},
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
