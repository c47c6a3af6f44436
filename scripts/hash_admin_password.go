package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/victim-dao-api/models"
)

// Quick utility to reset an admin panel password by hand
// Usage: go run scripts/hash_admin_password.go <email> <password>
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/hash_admin_password.go <email> <password>")
		os.Exit(1)
	}

	email := models.NormalizeEmail(os.Args[1])
	password := os.Args[2]
	if len(password) < 8 {
		fmt.Println("password must be at least 8 characters")
		os.Exit(1)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo update in MongoDB, run:\n")
	fmt.Printf("db.admin_users.updateOne(\n")
	fmt.Printf("  {\"email\": \"%s\"},\n", email)
	fmt.Printf("  {$set: {\"passwordHash\": \"%s\", \"active\": true}}\n", string(hashedPassword))
	fmt.Printf(")\n")
}
