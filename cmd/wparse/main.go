package main

import (
	"flag"
	"fmt"
	"os"

	"wparse/internal/app"
)

func main() {
	var configFile string
	var listenAddr string
	var workers int
	flag.StringVar(&configFile, "config", "", "Path to wparse.toml configuration file")
	flag.StringVar(&listenAddr, "listen", "", "Admin HTTP listen address (empty disables it)")
	flag.IntVar(&workers, "workers", 4, "Number of parser workers")
	flag.Parse()

	if configFile == "" {
		if envConfigFile := os.Getenv("WPARSE_CONFIG_FILE"); envConfigFile != "" {
			configFile = envConfigFile
		} else {
			configFile = "/etc/wparse/wparse.toml"
		}
	}

	fmt.Printf("using configuration file: %s\n", configFile)

	application, err := app.New(app.Options{
		ConfigFile: configFile,
		ListenAddr: listenAddr,
		Workers:    workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}
