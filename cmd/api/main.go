package main

import (
	"go.uber.org/fx"

	"github.com/sari-pos/sari/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
