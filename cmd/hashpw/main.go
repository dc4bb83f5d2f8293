// Command hashpw prints the PHC-encoded argon2id hash of a password, for
// seeding or repairing user records by hand.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/Wang-tianhao/vibrant-accounts/internal/password"
)

func main() {
	verify := pflag.String("verify", "", "Check the password against this encoded hash instead of hashing it")
	pflag.Parse()

	plaintext, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}

	hasher := password.NewHasher()

	if *verify != "" {
		ok, err := hasher.Verify(plaintext, *verify)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("mismatch")
			os.Exit(1)
		}
		fmt.Println("match")
		return
	}

	encoded, err := hasher.Hash(plaintext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(encoded)
}

// readPassword prompts without echo on a terminal and reads one line from
// stdin otherwise.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
