package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	StaticDir   string `env:"STATIC_DIR" default:"web"`
	Env         string `env:"APP_ENV" default:"dev"`
}
