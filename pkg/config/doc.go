// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: a .env file
// is loaded once per process, then the environment is parsed into any struct
// annotated with `env` tags. Packages own their configuration structs
// (pg.Config, redis.Config, email.Config, ...) and the binary composes them.
//
//	type Config struct {
//		Postgres pg.Config
//		HTTP     httpserver.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// LoadEnv reads additional dotenv files, which is handy in tests.
package config
