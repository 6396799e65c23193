// Package health serves liveness and readiness probes for the apc server.
//
// Liveness always answers 200. Readiness runs named [CheckFunc]s in parallel
// under one deadline and answers 503 when any of them fails:
//
//	checker := health.New(health.Checks{
//	    "backend": probe,
//	    "redis":   redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second))
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", checker.ReadinessHandler())
//
// Responses are plain text ("OK" / "Service Unavailable") unless the client
// asks for JSON with ?format=json or an Accept header:
//
//	{"status":"unhealthy","checks":{"backend":{"status":"unhealthy","error":"...","duration":"1.2ms"}}}
package health
