// Package common holds helpers shared by the MCP tool packages: account
// resolution from request arguments and the instrumentation wrapper applied
// to every registered tool handler.
package common
