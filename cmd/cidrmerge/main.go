// Command cidrmerge builds minimal CIDR covers of IPv4 and IPv6 block lists
// and writes them as plain lists and nftables sets.
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}
	Execute()
}
