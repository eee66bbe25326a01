// Package model defines data structures for mcp-gateway.
//
// This package contains:
//   - Config: gateway configuration
//   - JSON-RPC: request/response/error envelopes and error kinds
//   - Catalog: resource / tool / prompt listings and prompt descriptors
//   - ID and parameter errors shared by the router and handlers
package model
