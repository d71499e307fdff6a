package main

import (
	"log"

	corecmd "github.com/m3rciful/adventbot/core/cmd"
	"github.com/m3rciful/adventbot/internal/app"
	"github.com/m3rciful/adventbot/internal/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "ADVENTBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
