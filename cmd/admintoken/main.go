// Command admintoken hashes an admin API token for ADMIN_API_TOKEN_HASH
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"

	"github.com/atelier-textile/storefront-api/internal/pkg/auth"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	generate := flag.Bool("generate", false, "generate a random token instead of reading one from the arguments")
	flag.Parse()

	var token string
	switch {
	case *generate:
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatal("Error generating token:", err)
		}
		token = base64.RawURLEncoding.EncodeToString(buf)
	case flag.NArg() == 1:
		token = flag.Arg(0)
	default:
		log.Fatal("Usage: admintoken [-cost 12] (-generate | <token>)")
	}

	hash, err := auth.HashAdminToken(token, *cost)
	if err != nil {
		log.Fatal("Error hashing token:", err)
	}

	if err := auth.NewAdminAuthenticator("", hash).Verify(token); err != nil {
		log.Fatal("Hash verification failed:", err)
	}

	fmt.Printf("ADMIN_API_TOKEN=%s\n", token)
	fmt.Printf("ADMIN_API_TOKEN_HASH=%s\n", hash)
}
