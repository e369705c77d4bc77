// Package main is the ltstar command line tool.
package main

import (
	"log"
	"os"

	"github.com/aerialnav/ltstar/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
