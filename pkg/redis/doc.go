// Package redis connects to Redis with github.com/redis/go-redis/v9 and exposes
// a readiness check. The service uses it as the shared backend of the
// attempt limiter so limits hold across instances.
package redis
