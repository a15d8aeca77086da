// Package health serves liveness and readiness probes.
//
// Readiness runs the registered checks in parallel under one timeout; the
// loom command registers its session store and Redis there:
//
//	checks := health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}
//	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithTimeout(2*time.Second)))
//
// Both handlers answer plain text, or JSON for ?format=json and
// Accept: application/json.
package health
