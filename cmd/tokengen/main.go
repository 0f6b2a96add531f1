// Package main provides a CLI for local credentials: signed service tokens for
// the Warden API and fresh TOKEN_SECRET values.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"warden/internal/platform/config"
	"warden/pkg/platform/middleware/caller"
	strutil "warden/pkg/platform/strings"
)

const (
	defaultIssuer   = "warden"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Subject   string            `json:"subject"`
	Admin     bool              `json:"admin"`
	Rights    []string          `json:"rights,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	serviceCmd := flag.NewFlagSet("service", flag.ExitOnError)
	serviceSubject := serviceCmd.String("subject", "local-dev", "Calling service name")
	serviceAdmin := serviceCmd.Bool("admin", false, "Grant every right")
	serviceRights := serviceCmd.String("rights", "", "Comma-separated rights, e.g. user.read,session.write")
	serviceTTL := serviceCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	serviceIssuer := serviceCmd.String("issuer", defaultIssuer, "Issuer; must match SERVICE_TOKEN_ISSUER")
	serviceJSON := serviceCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "service":
		serviceCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		secret := os.Getenv("SERVICE_TOKEN_SECRET")
		if secret == "" {
			fatalf("SERVICE_TOKEN_SECRET must be set to the server's value")
		}
		generateServiceToken(secret, *serviceIssuer, *serviceSubject, *serviceAdmin, strutil.SplitList(*serviceRights), *serviceTTL, *serviceJSON)
	case "secret":
		generateSecret()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func generateServiceToken(secret, issuer, subject string, admin bool, rights []string, ttl time.Duration, asJSON bool) {
	token, err := caller.NewServiceTokens([]byte(secret), issuer).Issue(subject, admin, rights, ttl)
	if err != nil {
		fatalf("failed to sign token: %v", err)
	}

	if !asJSON {
		fmt.Println(token)
		return
	}
	writeJSON(tokenOutput{
		Token:     token,
		Type:      "Bearer",
		ExpiresIn: ttl.String(),
		Subject:   subject,
		Admin:     admin,
		Rights:    rights,
		Usage: map[string]string{
			"curl": fmt.Sprintf("curl -H 'Authorization: Bearer %s' http://localhost:8080/users/1", token),
		},
	})
}

// generateSecret prints a value accepted by TOKEN_SECRET.
func generateSecret() {
	b := make([]byte, config.TokenSecretSize)
	if _, err := rand.Read(b); err != nil {
		fatalf("failed to read random bytes: %v", err)
	}
	fmt.Println(hex.EncodeToString(b))
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("failed to encode output: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: tokengen <command> [flags]

Commands:
  service   Sign a service token (reads SERVICE_TOKEN_SECRET)
  secret    Print a random hex TOKEN_SECRET

Examples:
  SERVICE_TOKEN_SECRET=dev tokengen service -subject billing -rights user:read
  SERVICE_TOKEN_SECRET=dev tokengen service -admin -json
  tokengen secret`)
}
