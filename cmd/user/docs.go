package main

// @title User Service API
// @version 1.0
// @description Account, authentication and role management for the library platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/library-service
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/library-service/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Auth
// @tag.description Authentication endpoints

// @tag.name Users
// @tag.description User profile endpoints

// @tag.name Admin
// @tag.description Admin-only endpoints

// @tag.name Internal
// @tag.description Service-to-service endpoints

// @tag.name Health
// @tag.description Health check endpoints
