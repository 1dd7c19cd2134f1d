// Package google_tools provides the MCP tool that reports which Google
// accounts calimport is authorized for.
//
// Authorization itself happens outside the MCP session with
// `calimport auth login`, which runs the loopback OAuth flow in a browser.
package google_tools
