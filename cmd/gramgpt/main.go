package main

import (
	"context"
	"github.com/DenisKhanov/GramGPT/internal/app/gramgpt"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()

	app, err := gramgpt.NewApp(ctx)
	if err != nil {
		logrus.Fatalf("failed to init app: %s", err.Error())
	}

	app.Run()
}
