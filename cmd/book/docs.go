package main

// @title Book Service API
// @version 1.0
// @description Catalog and inventory ledger for the library platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/library-service
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/library-service/blob/main/LICENSE

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Books
// @tag.description Catalog endpoints

// @tag.name Health
// @tag.description Health check endpoints
