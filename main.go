package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/safevoice-app/safevoice-api/api/handlers"

	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { //initialize database and router
		log.Fatal(err)
	}

	zap.S().Infow("safevoice-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
