// Package api exposes the bridge adapter to remote polling hosts over HTTP
// and WebSocket.
//
// This package provides:
//   - REST endpoints mirroring the adapter's command and query blocks
//   - A WebSocket RPC channel carrying one call per frame
//   - Read access to the message journal and runtime metrics
//   - Optional HS256 bearer-token auth
//
// # Semantics
//
// Commands never report failure: like the blocks they mirror, they answer
// 204 No Content whatever their effect. Only a malformed request body is
// rejected. Queries answer {"<name>": value}.
//
// Each request polls the adapter directly, so message_received keeps its
// edge-pulse behaviour across callers: two hosts polling one adapter share
// the pulse.
package api
