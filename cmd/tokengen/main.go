// Command tokengen prints a signed development token for the API.
//
//	tokengen -sub user-1 -orgs 6f1c...,9a2b... [-admin] [-ttl 24h]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"programscheduler/config"
	"programscheduler/internal/adapters/auth"
	"programscheduler/internal/domain"
)

func main() {
	sub := flag.String("sub", "dev-user", "token subject (user id)")
	orgs := flag.String("orgs", "", "comma separated organization ids")
	admin := flag.Bool("admin", false, "grant access to every organization")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	access := domain.AccessContext{UserID: *sub, IsAdmin: *admin}
	for _, id := range strings.Split(*orgs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			access.OrganizationIDs = append(access.OrganizationIDs, id)
		}
	}
	token, err := auth.NewJWT(cfg.JWTSecret).Issue(access, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
