// Package redis opens go-redis clients from a yaml-friendly Config.
//
// Open pings the server and retries with a linear backoff, so an application
// can start while Redis is still coming up:
//
//	client, err := redis.Open(ctx, redis.Config{URL: os.Getenv("REDIS_URL")})
//	if err != nil {
//		return err
//	}
//	app := loom.New(
//		loom.WithBufferStore(loom.NewRedisBufferStore(client)),
//		loom.WithHealthCheck("redis", redis.Healthcheck(client)),
//		loom.WithShutdownHook(redis.Shutdown(client)),
//	)
//
// Errors are sentinels joined with the underlying cause: [ErrEmptyConnectionURL],
// [ErrFailedToParseURL], [ErrConnectionFailed] and [ErrHealthcheckFailed].
package redis
