// Package server implements the wifid HTTP API.
//
// The API is a small JSON-over-HTTP surface plus one WebSocket endpoint:
//
//	GET  /api/v1/status          connectivity status and addressing
//	GET  /api/v1/scan            run a network scan, return visible networks
//	PUT  /api/v1/config/station  apply and persist station configuration
//	PUT  /api/v1/config/ap       apply and persist access point configuration
//	GET  /api/v1/events          WebSocket stream of connectivity changes
//
// The server binds to the loopback interface by default; it is meant to be
// consumed by wifictl and local provisioning UIs, not exposed to the
// network the device manages.
package server
