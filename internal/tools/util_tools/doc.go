// Package util_tools provides general-purpose MCP tools that need no
// external service.
//
//   - get_current_time: The current time in an IANA time zone
package util_tools
