package config

type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	// ClientURL is the web front-end that browser redirects land on
	ClientURL     string `yaml:"client_url" mapstructure:"client_url"`
	SessionSecret string `yaml:"session_secret" mapstructure:"session_secret"`
}

type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Output      string `yaml:"output" mapstructure:"output"`
	FilePath    string `yaml:"file_path" mapstructure:"file_path"`
	Development bool   `yaml:"development" mapstructure:"development"`
	// SampleInitial caps identical log lines per second; 0 disables sampling
	SampleInitial int `yaml:"sample_initial" mapstructure:"sample_initial"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" mapstructure:"secret"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}
