//go:build ignore

// This script prints fresh secrets for the form token signer and the admin API.
// Run with: go run scripts/generate_keys.go >> .env
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading random bytes: %v\n", err)
		os.Exit(1)
	}
	return b
}

func main() {
	// 32 bytes signs HS256 form tokens
	fmt.Printf("CSRF_SECRET=%s\n", base64.StdEncoding.EncodeToString(randomBytes(32)))
	// comma separated, one key per operator
	fmt.Printf("ADMIN_API_KEYS=%s\n", hex.EncodeToString(randomBytes(24)))
}
