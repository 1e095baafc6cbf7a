package config

type JobRunner struct {
	URI string `env:"URI,expand" envDefault:"memory://?parallelism=1"`
}
