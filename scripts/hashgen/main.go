// Command hashgen produces a bcrypt hash for ADMIN_PASSPHRASE_HASH. The
// passphrase is read from stdin so it never lands in shell history.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		log.Fatalf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("failed to read passphrase: %v", err)
	}
	passphrase := strings.TrimRight(line, "\r\n")
	if passphrase == "" {
		log.Fatal("passphrase must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), *cost)
	if err != nil {
		log.Fatalf("failed to hash passphrase: %v", err)
	}

	fmt.Println(string(hash))
}
