// Package services holds the application operations shared by the HTTP API
// and the command line tool.
//
// ReportService downloads one exchange report through a ReportFetcher, runs it
// through the decomposition engine and returns the canonical record. Range
// requests fan out over weekdays with a bounded errgroup and return the
// records in date order, skipping days the exchange published nothing for.
//
// HealthService answers the health, liveness and readiness checks.
//
// Errors are *errors.AppError values so the transport layer can map them to
// problem responses without importing this package:
//
//	record, err := svc.Decompose(ctx, domain.KindPutCallRatio, day)
//	if errors.Is(err, services.ErrNoData) {
//	    // holiday or not yet published
//	}
package services
