package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	// Contact share policy. MinMessagesBeforeShare is the minimum number of
	// messages a conversation must have before either party may offer contact
	// details. ContactShareType selects which contact fields are required on
	// an offer: "phone", "email" or "both".
	MinMessagesBeforeShare int
	ContactShareType       string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		FirebaseProject:        getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:            getEnv("ENVIRONMENT", "development"),
		MinMessagesBeforeShare: getEnvAsInt("MIN_MESSAGES_BEFORE_SHARE", 3),
		ContactShareType:       getEnv("CONTACT_SHARE_TYPE", "both"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
