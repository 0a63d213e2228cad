// Package resources provides MCP resources for exposing session and account
// state. Resources are read-only data sources that MCP clients can fetch,
// complementing the tool surface with contextual information such as whether
// a saved session exists and who the connected account is.
package resources
