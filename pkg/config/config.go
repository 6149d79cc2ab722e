package config

import "os"

// Storage driver names
const (
	DriverFile     = "file"
	DriverDatabase = "database"
)

type Config struct {
	Port                    string
	Env                     string
	JWTSecret               string
	StorageDriver           string
	DataDir                 string
	UploadDir               string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	RedisAddr               string
	FirebaseCredentialsPath string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key"),
		StorageDriver:           getEnv("STORAGE_DRIVER", DriverFile),
		DataDir:                 getEnv("DATA_DIR", "./data"),
		UploadDir:               getEnv("UPLOAD_DIR", "./uploads"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "picstream"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
