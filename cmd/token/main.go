// Command token mints a bearer token for the API, for local use and smoke tests.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/parrot-platform/parrot/internal/auth"
	"github.com/parrot-platform/parrot/internal/config"
)

func main() {
	username := flag.String("user", "", "username the token is issued for")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <name> [-ttl 24h]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}
	if len(cfg.JWT.AccessSecret) < 32 {
		fmt.Fprintln(os.Stderr, "JWT_ACCESS_SECRET must be at least 32 characters")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWT.AccessSecret).Generate(*username, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
