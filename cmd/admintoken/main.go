// Command admintoken prints a fresh console admin token and the bcrypt hash
// to put in ADMIN_TOKEN_HASH. With -token it hashes the given value instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"kycreview/pkg/platform/secrets"
)

func main() {
	token := flag.String("token", "", "token to hash; a random one is generated when empty")
	flag.Parse()

	if *token == "" {
		generated, err := secrets.Generate()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		*token = generated
	}

	hash, err := secrets.Hash(*token)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("ADMIN_TOKEN=%s\nADMIN_TOKEN_HASH=%s\n", *token, hash)
}
