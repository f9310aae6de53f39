package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastionworks/ironclad-mp/server/core"
	"github.com/bastionworks/ironclad-mp/shared/protocol"
)

func main() {
	port := flag.Uint("port", 7777, "Server port")
	tickRate := flag.Int("tickrate", 20, "Server tick rate (updates per second)")
	name := flag.String("name", "Ironclad Server", "Server display name")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	arena := flag.String("arena", "scrapyard", "Arena to host")
	masterURL := flag.String("master", "", "Master server URL for listing (empty = unlisted)")
	address := flag.String("address", "", "Public address to advertise to the master")
	region := flag.String("region", "local", "Region label for the server browser")
	flag.Parse()

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	server, err := core.NewServer(*tickRate, *name, *version, *arena)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	var registration *core.Registration
	if *masterURL != "" {
		registration = core.NewRegistration(*masterURL, *name, *address, *version, *region, server)
		registration.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		if registration != nil {
			registration.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting Ironclad server %q on port %d (tick rate: %d/s, arena: %s)",
		*name, *port, *tickRate, *arena)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
