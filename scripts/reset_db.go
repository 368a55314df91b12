package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("========================================")
	fmt.Println("   Reset Database for Testing")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("⚠️  WARNING: This will DELETE ALL BILLING DATA!")
	fmt.Println()
	fmt.Println("This will:")
	fmt.Println("  - Delete all payments and online orders")
	fmt.Println("  - Delete all invoices and quotations")
	fmt.Println("  - Delete all vehicles and clients")
	fmt.Println("  - Reset document number sequences")
	fmt.Println()
	fmt.Println("Users and the catalog are kept.")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	// Load environment variables
	godotenv.Load()

	// Database connection
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "garage_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	fmt.Println()
	fmt.Println("🔄 Resetting database...")

	ctx := context.Background()

	statements := []string{
		"DELETE FROM payments",
		"DELETE FROM online_orders",
		"DELETE FROM invoice_items",
		"DELETE FROM quotation_items",
		"UPDATE quotations SET converted_invoice_id = NULL",
		"DELETE FROM quotations",
		"DELETE FROM invoices",
		"DELETE FROM vehicles",
		"DELETE FROM clients",
		"ALTER SEQUENCE invoice_number_seq RESTART WITH 1",
		"ALTER SEQUENCE quotation_number_seq RESTART WITH 1",
		"ALTER SEQUENCE invoices_id_seq RESTART WITH 1",
		"ALTER SEQUENCE quotations_id_seq RESTART WITH 1",
		"ALTER SEQUENCE payments_id_seq RESTART WITH 1",
		"ALTER SEQUENCE clients_id_seq RESTART WITH 1",
		"ALTER SEQUENCE vehicles_id_seq RESTART WITH 1",
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("Failed to execute %q: %v\n", stmt, err)
		}
	}

	fmt.Println("✅ Database reset complete.")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
