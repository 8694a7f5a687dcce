package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/staffline-mcp/internal/detection"
	"github.com/ironsheep/staffline-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "staff_find_staves").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errUnknownTool) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool call", "tool", params.Name, "duration", time.Since(start))

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

var errUnknownTool = errors.New("unknown tool")

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	case "staff_row_profile":
		return s.handleRowProfile(args)
	case "staff_detect_lines":
		return s.handleDetectLines(args)
	case "staff_group_lines":
		return s.handleGroupLines(args)
	case "staff_check_candidate":
		return s.handleCheckCandidate(args)
	case "staff_find_staves":
		return s.handleFindStaves(args)
	case "staff_overlay":
		return s.handleOverlay(args)

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// gridArgs are the image and pixel grid arguments shared by image tools.
// Nil options fall back to the server configuration.
type gridArgs struct {
	Path       string          `json:"path"`
	Channel    *string         `json:"channel"`
	BlurRadius *float64        `json:"blur_radius"`
	Invert     *bool           `json:"invert"`
	Region     *imaging.Region `json:"region"`
}

func (s *Server) gridOptions(a gridArgs) (imaging.GridOptions, error) {
	opts := s.cfg.GridOptions()
	if a.Channel != nil {
		ch, err := imaging.ParseChannel(*a.Channel)
		if err != nil {
			return opts, err
		}
		opts.Channel = ch
	}
	if a.BlurRadius != nil {
		opts.BlurRadius = *a.BlurRadius
	}
	if a.Invert != nil {
		opts.Invert = *a.Invert
	}
	opts.Region = a.Region
	return opts, nil
}

// profile loads the image and streams its rows into a profiler.
func (s *Server) profile(a gridArgs) (image.Image, imaging.GridOptions, *detection.RowProfiler, error) {
	if a.Path == "" {
		return nil, imaging.GridOptions{}, nil, errors.New("path is required")
	}
	opts, err := s.gridOptions(a)
	if err != nil {
		return nil, opts, nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, opts, nil, err
	}

	profiler := detection.NewRowProfiler(img.Bounds().Dy())
	err = imaging.StreamRows(img, opts, func(_ int, row []uint16) error {
		return profiler.Push(row)
	})
	if err != nil {
		return nil, opts, nil, err
	}
	return img, opts, profiler, nil
}

// analyze runs the full pipeline for an image tool call.
func (s *Server) analyze(a gridArgs) (image.Image, imaging.GridOptions, *detection.Result, error) {
	img, opts, profiler, err := s.profile(a)
	if err != nil {
		return nil, opts, nil, err
	}
	res, err := profiler.Analyze()
	if err != nil {
		return nil, opts, nil, err
	}
	s.logger.Debug("image analyzed",
		"path", a.Path,
		"rows", res.Rows,
		"cutoff", res.Threshold.Cutoff,
		"segments", len(res.Segments),
		"staves", len(res.Staves),
	)
	return img, opts, res, nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Pipeline Stage Handlers ===

type rowProfileResult struct {
	Rows      int                 `json:"rows"`
	RowValues []float64           `json:"row_values"`
	Threshold detection.Threshold `json:"threshold"`
}

func (s *Server) handleRowProfile(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	_, _, profiler, err := s.profile(a)
	if err != nil {
		return nil, err
	}

	values := profiler.Values()
	t, err := detection.ComputeThreshold(values)
	if err != nil {
		return nil, err
	}
	return &rowProfileResult{Rows: len(values), RowValues: values, Threshold: t}, nil
}

type detectLinesResult struct {
	Rows      int                 `json:"rows"`
	DarkRows  int                 `json:"dark_rows"`
	Threshold detection.Threshold `json:"threshold"`
	Mask      []bool              `json:"mask"`
	Segments  []detection.Segment `json:"segments"`
}

func (s *Server) handleDetectLines(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	_, _, profiler, err := s.profile(a)
	if err != nil {
		return nil, err
	}

	mask, t, err := profiler.Mask()
	if err != nil {
		return nil, err
	}

	dark := 0
	for _, d := range mask {
		if d {
			dark++
		}
	}
	return &detectLinesResult{
		Rows:      len(mask),
		DarkRows:  dark,
		Threshold: t,
		Mask:      mask,
		Segments:  detection.GroupDarkRuns(mask),
	}, nil
}

type groupLinesArgs struct {
	Mask []bool `json:"mask"`
}

type groupLinesResult struct {
	Count    int                 `json:"count"`
	Segments []detection.Segment `json:"segments"`
}

func (s *Server) handleGroupLines(args json.RawMessage) (interface{}, error) {
	var a groupLinesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	segs := detection.GroupDarkRuns(a.Mask)
	return &groupLinesResult{Count: len(segs), Segments: segs}, nil
}

type checkCandidateArgs struct {
	Segments []detection.Segment `json:"segments"`
}

type checkCandidateResult struct {
	Regular       bool                   `json:"regular"`
	Measurements  detection.Measurements `json:"measurements"`
	LineSpread    int                    `json:"line_spread"`
	SpacingSpread int                    `json:"spacing_spread"`
	Top           int                    `json:"top"`
	Bottom        int                    `json:"bottom"`
}

func (s *Server) handleCheckCandidate(args json.RawMessage) (interface{}, error) {
	var a checkCandidateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	c, err := detection.NewCandidate(a.Segments)
	if err != nil {
		return nil, err
	}

	m := detection.Measure(c)
	return &checkCandidateResult{
		Regular:       m.Regular(),
		Measurements:  m,
		LineSpread:    m.LineSpread(),
		SpacingSpread: m.SpacingSpread(),
		Top:           c.Top(),
		Bottom:        c.Bottom(),
	}, nil
}

type findStavesArgs struct {
	gridArgs
	IncludeProfile bool `json:"include_profile"`
}

func (s *Server) handleFindStaves(args json.RawMessage) (interface{}, error) {
	var a findStavesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	_, _, res, err := s.analyze(a.gridArgs)
	if err != nil {
		return nil, err
	}
	if !a.IncludeProfile {
		res.RowValues = nil
		res.Mask = nil
	}
	return res, nil
}

type overlayArgs struct {
	gridArgs
	LineColor  string   `json:"line_color"`
	StaffColor string   `json:"staff_color"`
	Opacity    *float64 `json:"opacity"`
}

type overlayResult struct {
	*imaging.OverlayResult
	Staves int `json:"staves"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, grid, res, err := s.analyze(a.gridArgs)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.OverlayOptions()
	if a.LineColor != "" {
		opts.LineColor = a.LineColor
	}
	if a.StaffColor != "" {
		opts.StaffColor = a.StaffColor
	}
	if a.Opacity != nil {
		opts.Opacity = *a.Opacity
	}
	opts.Region = grid.Region

	out, err := imaging.Overlay(img, imaging.BandsFromResult(res), opts)
	if err != nil {
		return nil, err
	}
	return &overlayResult{OverlayResult: out, Staves: len(res.Staves)}, nil
}
