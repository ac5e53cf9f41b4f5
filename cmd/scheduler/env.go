package main

import (
	"log"
	"os"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	APIToken       string

	SYBAPIURL     string
	SYBAPIToken   string
	AladhanAPIURL string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	env := Environment{
		Environment:    os.Getenv("APP_ENV"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerAddress:  os.Getenv("SERVER_ADDRESS"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		APIToken:       os.Getenv("API_TOKEN"),

		SYBAPIURL:     os.Getenv("SYB_API_URL"),
		SYBAPIToken:   os.Getenv("SYB_API_TOKEN"),
		AladhanAPIURL: os.Getenv("ALADHAN_API_URL"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
	}

	// Basic validation
	if env.DatabaseURL == "" || env.SYBAPIURL == "" || env.SYBAPIToken == "" {
		log.Fatal("Missing required environment variables")
	}

	if env.ServerAddress == "" {
		env.ServerAddress = ":8080"
	}
	if env.MigrationsPath == "" {
		env.MigrationsPath = "./migrations"
	}

	return env
}
