package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// calc_webhook_sig.go - Utility to calculate the X-Attendance-Signature
// header for a webhook payload, for integrators verifying deliveries.
//
// Usage:
//   go run scripts/calc_webhook_sig.go <secret> <payload>
//
// Output:
//   sha256=1b2f7a...

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/calc_webhook_sig.go <secret> <payload>")
		os.Exit(1)
	}

	secret := os.Args[1]
	payload := os.Args[2]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	fmt.Printf("Payload:   %s\n", payload)
	fmt.Printf("Signature: sha256=%s\n", signature)
}
