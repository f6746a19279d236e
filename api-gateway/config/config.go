package config

import (
	"os"
	"strings"
	"time"
)

// ServiceConfig holds configuration for a backend service
type ServiceConfig struct {
	Name        string
	BaseURL     string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port     string
	Services map[string]ServiceConfig
}

// LoadConfig loads the gateway configuration
func LoadConfig() *GatewayConfig {
	userURL := getEnv("USER_SERVICE_URL", "http://localhost:8080")
	bookURL := getEnv("BOOK_SERVICE_URL", "http://localhost:8081")
	borrowURL := getEnv("BORROW_SERVICE_URL", "http://localhost:8082")

	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Services: map[string]ServiceConfig{
			"user": {
				Name:        "user-service",
				BaseURL:     userURL,
				Instances:   getInstances("USER_SERVICE_INSTANCES", userURL),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			"book": {
				Name:        "book-service",
				BaseURL:     bookURL,
				Instances:   getInstances("BOOK_SERVICE_INSTANCES", bookURL),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			"borrow": {
				Name:        "borrow-service",
				BaseURL:     borrowURL,
				Instances:   getInstances("BORROW_SERVICE_INSTANCES", borrowURL),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInstances parses a comma-separated instance list for the round-robin
// balancer, falling back to the single base URL
func getInstances(key, baseURL string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return []string{baseURL}
	}

	var instances []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			instances = append(instances, item)
		}
	}
	if len(instances) == 0 {
		return []string{baseURL}
	}
	return instances
}
