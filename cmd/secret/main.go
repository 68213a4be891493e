package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
)

// generateSecret returns n random bytes for signing session tokens
func generateSecret(n int) []byte {
	secret := make([]byte, n)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("Unable to generate secret: %v", err)
	}
	return secret
}

func main() {
	size := flag.Int("bytes", 32, "Number of random bytes")
	flag.Parse()

	if *size < 32 {
		log.Fatalf("JWT_SECRET needs at least 32 bytes, got %d", *size)
	}
	fmt.Println("JWT_SECRET=" + hex.EncodeToString(generateSecret(*size)))
}
