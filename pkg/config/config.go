package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	MetricsPort             string
	MongoURI                string
	MongoDatabase           string
	PostgresConnStr         string
	RedisAddr               string
	FirebaseCredentialsPath string
	ModerationURL           string
	ModerationAPIKey        string
	JWTSecret               string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "threads"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		ModerationURL:           getEnv("MODERATION_URL", "https://nsfw-text-moderation-api.p.rapidapi.com/moderation_check.php"),
		ModerationAPIKey:        getEnv("MODERATION_API_KEY", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
