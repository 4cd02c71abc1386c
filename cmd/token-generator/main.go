// Command token-generator mints HS256 tokens accepted by the realtime service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
)

func main() {
	var (
		subject = flag.StringP("user", "u", "", "token subject (user id)")
		email   = flag.StringP("email", "e", "", "optional email claim")
		ttl     = flag.DurationP("ttl", "t", jwt.DefaultTTL, "token lifetime")
		secret  = flag.StringP("secret", "s", "", "signing secret (defaults to JWT_SECRET_KEY)")
		issuer  = flag.String("issuer", "", "issuer claim (defaults to JWT_ISSUER)")
		envFile = flag.String("env-file", ".env", "dotenv file to read when flags are omitted")
	)
	flag.Parse()

	_ = godotenv.Load(*envFile)
	if *secret == "" {
		*secret = os.Getenv("JWT_SECRET_KEY")
	}
	if *issuer == "" {
		*issuer = os.Getenv("JWT_ISSUER")
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "--user is required")
		flag.Usage()
		os.Exit(2)
	}

	token, err := jwt.GenerateToken(jwt.Config{SecretKey: *secret, Issuer: *issuer}, jwt.GenerateInput{
		Subject: *subject,
		Email:   *email,
		TTL:     *ttl,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
}
