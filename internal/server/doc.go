// Package server implements the MCP (Model Context Protocol) server for
// staff line detection.
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
// Notifications (methods under notifications/) are accepted and never
// answered.
//
// # Available Tools
//
//   - image_load: Load a score image and report its metadata
//   - staff_row_profile: Per-row mean intensity and the dark-row threshold
//   - staff_detect_lines: Dark-row mask, threshold and line segments
//   - staff_group_lines: Group a row mask into line segments
//   - staff_check_candidate: Test five segments for staff regularity
//   - staff_find_staves: Full pipeline, returning every regular staff
//   - staff_overlay: Detected lines painted onto the image as base64 PNG
//
// Image tools accept channel, blur_radius, invert and region. Omitted
// values come from the [detection] section of the configuration.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so
// repeated calls on one score decode it once.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses:
//   - -32601: unknown method
//   - -32602: malformed tools/call params or unknown tool name
//   - -32000: tool execution failed; data holds the Go error string
package server
