// Command keygen prints fresh secrets for the server environment in .env format.
//
//	go run ./cmd/keygen >> .env
//	go run ./cmd/keygen -out .env.secrets
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmitrymomot/fintrack/pkg/totp"
)

const secretBytes = 32

func main() {
	out := flag.String("out", "", "write to this file instead of stdout")
	flag.Parse()

	secrets, err := generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := godotenv.Write(secrets, *out); err != nil {
			fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
			os.Exit(1)
		}
		return
	}

	content, err := godotenv.Marshal(secrets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(content)
}

func generate() (map[string]string, error) {
	jwtSecret, err := randomString()
	if err != nil {
		return nil, err
	}
	pepper, err := randomString()
	if err != nil {
		return nil, err
	}
	encKey, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"JWT_SECRET":          jwtSecret,
		"OTP_CODE_PEPPER":     pepper,
		"TOTP_ENCRYPTION_KEY": encKey,
	}, nil
}

func randomString() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
