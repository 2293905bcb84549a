// Command token mints an operator bearer token signed with AUTH_JWT_SECRET.
//
//	go run ./cmd/token -name labeler-1 -ttl 720h
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SeakMengs/OpenSight/internal/auth"
	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/env"
	"github.com/SeakMengs/OpenSight/internal/util"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	name := flag.String("name", "", "operator or integration the token is for")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to AUTH_TOKEN_TTL")
	flag.Parse()

	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()

	if *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	if !cfg.AuthEnabled() {
		logger.Fatal("AUTH_JWT_SECRET is not set, the api does not check tokens")
	}

	token, err := auth.NewJwt(cfg.Auth, logger).GenerateAccessToken(auth.JWTPayload{Name: *name}, *ttl)
	if err != nil {
		logger.Fatal(err)
	}

	fmt.Println(token)
}
