// Command devtoken mints an access token for local testing. Identity is
// issued by another service in production.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/middleware"
	"github.com/shop1111/flight-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()

	user := flag.Uint64("user", 1, "user id to put in the subject")
	role := flag.String("role", middleware.RoleCustomer, "role claim (CUSTOMER or ADMIN)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 secret (defaults to $JWT_SECRET)")
	flag.Parse()

	if *secret == "" {
		logrus.Fatal("no secret: set JWT_SECRET or pass -secret")
	}
	if *user == 0 {
		logrus.Fatal("user id must be positive")
	}
	tok, err := utils.NewAccessToken(*secret, *user, *role, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("failed to sign token")
	}
	fmt.Println(tok.Token)
	logrus.WithField("expires", tok.Exp.Format(time.RFC3339)).Info("token issued")
}
