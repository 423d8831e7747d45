package config

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/logging"
)

// Config holds the project config values. Integration credentials such as
// JWT_SECRET, SENDGRID_API_KEY, CLOUDINARY_URL and OPENAI_API_KEY are read
// from the environment by their consumers at call time and do not live here.
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logging.Setup()

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         os.Getenv("PORT"),
	}

}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
