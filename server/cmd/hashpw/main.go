// Command hashpw prints the bcrypt hash to put in OPERATOR_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"SlideLab/server/internal/services/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
