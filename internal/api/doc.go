// Package api hosts the HTTP server for submitting company lists and polling
// their progress. Routes:
//   - POST /upload (alias POST /v1/jobs) accepts a multipart "file" field.
//   - GET /progress returns the most recent job; GET /v1/jobs/{job_id}/status a specific one.
//   - GET /download/{filename} streams a finished result workbook.
//   - GET /healthz, /readyz and /metrics for probes and Prometheus scraping.
package api
