package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/greut/iiif-viewer/server"
)

func main() {
	// Configuration
	var configFile = flag.String("config", "config.toml", "Define the configuration file to use.")
	flag.Parse()

	if flag.NArg() > 0 {
		*configFile = flag.Arg(0)
	}

	log.Printf("Reading configuration from %s", *configFile)
	config, err := server.LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	// build router with group cache middleware and the manifests directory.
	handler := server.SetGroupCache(
		server.WithConfig(server.MakeRouter(), config),
		config,
		fmt.Sprintf("http://%s:%d/", config.Host, config.Port),
	)

	// Serving
	listen := fmt.Sprintf("%v:%v", config.Host, config.Port)

	log.Printf("Server running on %v", listen)
	log.Fatal(http.ListenAndServe(listen, handler))
}
