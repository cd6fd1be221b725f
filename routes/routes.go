// Package routes wires the gin router.
//
//   - api.go: /v1 API, probes, metrics and middleware
//   - web.go: service index and endpoint listing
//
// Usage:
//
//	routes.SetupAllRoutes(router, routes.Controllers{...}, logger)
package routes
