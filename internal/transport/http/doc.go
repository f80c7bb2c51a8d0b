// Package http exposes the report decomposition service over a chi router.
//
// Handlers stay thin: they bind path and query parameters into query structs,
// validate them with the shared RequestValidator, call the service and render
// the result. Every failure goes through errors.ErrorHandler and is answered
// with an RFC 7807 problem document.
//
// Routes:
//
//	GET /api/reports                       supported report kinds
//	GET /api/reports/{kind}/{date}         one trading day
//	GET /api/reports/{kind}?from=&to=      weekdays in [from, to]
//	GET /api/stocks?market=TSE|OTC         listed-securities directory
//	GET /api/health, /ready, /live         health checks
//	GET /metrics                           Prometheus exposition
//
// Report routes accept format=json|csv|xlsx; csv and xlsx are served as
// attachments.
package http
