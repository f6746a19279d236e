package main

// @title Borrow Service API
// @version 1.0
// @description Two-phase borrow/return lifecycle for the library platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/library-service
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/library-service/blob/main/LICENSE

// @host localhost:8082
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Lifecycle
// @tag.description Borrow/return state transitions

// @tag.name Records
// @tag.description Record projections and availability

// @tag.name Health
// @tag.description Health check endpoints
