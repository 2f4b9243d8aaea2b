/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

const (
	releaseVersion = "0.1.0"
	envFile        = ".env"
)

func main() {
	log.SetFlags(0)

	cobra.CheckErr(loadEnvFile(envFile))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := &Config{}
	err := newCmd(cfg).ExecuteContext(ctx)
	stop()
	cobra.CheckErr(err)
}
