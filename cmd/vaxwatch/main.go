package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	vwg "github.com/vaxwatch/vaxwatch-go"
)

func main() {
	state := pflag.StringP("state", "s", "", "the 2 letter state code to use to get current appointments")
	zipsPath := pflag.StringP("zips-path", "z", "", "path to a json file containing an array of target zip codes; all zip codes are considered when omitted")
	fromEmail := pflag.StringP("from-email", "f", "", "the email address to send alerts from")
	toEmail := pflag.StringP("to-email", "t", "", "the email address to send alerts to")
	configPath := pflag.StringP("config", "c", vwg.DefaultConfigPath, "path to the yaml config file")
	once := pflag.Bool("once", false, "report currently available appointments once and exit")
	pflag.Parse()

	watcher, err := vwg.Setup(*configPath, *state, *zipsPath, *fromEmail, *toEmail)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		pflag.Usage()
		os.Exit(1)
	}

	if *once {
		if err := watcher.ReportOnce(); err != nil {
			vwg.Log.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		vwg.Log.Infof("Received %v, finishing current cycle...", sig)
		cancel()
	}()

	if err := watcher.Run(ctx); err != nil {
		vwg.Log.Errorf("%v", err)
		os.Exit(1)
	}
}
