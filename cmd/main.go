package main

import (
	"context"
	"log"

	"gw-payment-engine/internal/app"
)

func main() {
	app, err := app.NewApp()
	if err != nil {
		log.Fatalf("Ошибка создания приложения: %v", err)
	}

	ctx := context.Background()
	if err := app.BuildRatesLayer(ctx); err != nil {
		log.Fatalf("Ошибка загрузки курсов валют: %v", err)
	}
	if err := app.BuildEventsLayer(ctx); err != nil {
		log.Fatalf("Ошибка инициализации событий: %v", err)
	}
	if err := app.BuildBankLayer(); err != nil {
		log.Fatalf("Ошибка создания банков: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Ошибка при работе приложения: %v", err)
	}
}
