package main

import (
	"tripmarket/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Trip Marketplace Financial Core API
// @version         1.0
// @description     Booking financial core (fees, payments, refunds, audit) backed by DynamoDB.

// @host localhost:8080

// @BasePath  /v1

func main() {
	routes.Run()
}
