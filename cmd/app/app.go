package main

import (
	"os"

	"github.com/procesos/product-directory/internal/app"
	config "github.com/procesos/product-directory/internal/cfg"
	"github.com/procesos/product-directory/pkg/logger"
)

// @title						Product Directory API
// @version					1.0
// @description				Каталог товаров пользователей с импортом из внешнего каталога.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Bearer <JWT>
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
