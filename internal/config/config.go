package config

import (
	"os"
	"time"
)

type Config struct {
	ServerAddress string
	JWTSecret     string
	JWTExpiration time.Duration

	MongoURI string
	MongoDB  string

	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	GoogleMapsAPIKey string

	CloudinaryCloudName    string
	CloudinaryUploadPreset string

	GeminiAPIKey string
	GeminiModel  string

	MaxUploadSizeMB int64
}

func Load() *Config {
	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration: 24 * time.Hour,

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "limbahku"),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_KEY", ""),

		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "LimbahKu"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		MaxUploadSizeMB: 10,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
