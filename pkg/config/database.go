package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/picstream/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LoadEnv reads a .env file if one is present
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}
}

// InitStorage opens the storage backend selected by the config and returns
// the repository bundle plus a close function.
func InitStorage(cfg *Config) (*repositories.Store, func(), error) {
	switch cfg.StorageDriver {
	case DriverFile:
		fs, err := repositories.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return fs.Repositories(), func() {}, nil

	case DriverDatabase:
		if cfg.PostgresConnStr == "" {
			return nil, nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		if cfg.MongoURI == "" {
			return nil, nil, fmt.Errorf("MONGO_URI environment variable not set")
		}

		pgdb, err := initPostgres(cfg.PostgresConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		mongoClient, err := initMongo(cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}

		store, err := repositories.NewDatabaseStore(pgdb, mongoClient.Database(cfg.MongoDatabase))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to migrate models: %w", err)
		}
		return store, func() { closeDatabases(pgdb, mongoClient) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL!")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to MongoDB!")
	return client, nil
}

func closeDatabases(pgdb *gorm.DB, mongoClient *mongo.Client) {
	if sqlDB, err := pgdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing PostgreSQL connection: %v\n", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoClient.Disconnect(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v\n", err)
	}
}
