package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Wang-tianhao/vibrant-accounts/internal/config"
	"github.com/Wang-tianhao/vibrant-accounts/jwtauth"
)

func main() {
	var (
		subject    = pflag.String("sub", "user@example.org", "Subject (the account email)")
		secret     = pflag.String("secret", "", "Secret key (minimum 32 bytes); defaults to jwt.secret from the config")
		configFile = pflag.StringP("config", "c", config.DefaultConfigFile, "Path to the TOML configuration file")
		url        = pflag.String("url", "http://localhost:8080/users", "URL printed in the usage example")
	)

	pflag.Parse()

	if *secret == "" {
		cfg, err := config.Load(config.LoaderConfig{
			ConfigFile:         *configFile,
			EnvFile:            config.DefaultEnvFile,
			ConfigFileRequired: pflag.CommandLine.Changed("config"),
		})
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		*secret = cfg.JWT.Secret
	}

	cfg, err := jwtauth.NewConfig(jwtauth.WithHS256([]byte(*secret)))
	if err != nil {
		log.Fatalf("Invalid secret: %v", err)
	}

	now := time.Now()
	tokenString, err := jwtauth.NewIssuer(cfg).Issue(*subject, now)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	w := os.Stdout
	fmt.Fprintln(w, "\n=== JWT Token Generated ===")
	fmt.Fprintf(w, "\nToken: %s\n\n", tokenString)
	fmt.Fprintln(w, "Claims:")
	fmt.Fprintf(w, "  Subject: %s\n", *subject)
	fmt.Fprintf(w, "  Expires: %s\n\n", now.Add(jwtauth.TokenValidity).Format(time.RFC3339))
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  curl -H 'Authorization: Bearer %s' %s\n\n", tokenString, *url)
}
