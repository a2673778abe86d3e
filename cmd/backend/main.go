package main

import (
	"context"

	"tigerstorage/internal/pkg"

	"github.com/sirupsen/logrus"
)

// @title TigerStorage API
// @version 1.0
// @description Сервис бронирования мест для хранения вещей

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	ctx := context.Background()

	app, err := pkg.NewApp(ctx)
	if err != nil {
		logrus.Fatalf("app init: %v", err)
	}

	app.RunApp(ctx)
}
