package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/xiniluca/skillswap/core/bootstrap"
	"github.com/xiniluca/skillswap/core/cmd"
	"github.com/xiniluca/skillswap/internal/bot"
	"github.com/xiniluca/skillswap/internal/config"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := carrier.(*config.Config)
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return bot.New(cfg, res.DB), nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
