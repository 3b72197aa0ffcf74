package env

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const DefaultEnvFile = ".env"

// InitConfig loads optional dotenv files and fills config from the environment.
// Variables already present in the environment win over the files.
// With no files given DefaultEnvFile is tried.
func InitConfig(config any, files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		// nolint:errcheck // dotenv files are optional
		_ = godotenv.Load(f)
	}

	if err := envconfig.Process("", config); err != nil {
		return errors.Wrap(err, "failed to envconfig.Process")
	}

	return nil
}

// Usage prints the variables config understands, used by the entry point on config errors.
func Usage(config any) error {
	return errors.Wrap(envconfig.Usage("", config), "failed to envconfig.Usage")
}
