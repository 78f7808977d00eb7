package main

import (
	"log"
	"os"
)

func run() error { return nil }

func main() {
	if err := run(); err != nil {
		log.Fatal(err) // want "прямой вызов log.Fatal в функции main запрещен"
	}
	defer func() {
		os.Exit(0)
	}()
	os.Exit(1) // want "прямой вызов os.Exit в функции main запрещен"
}

func helper() {
	os.Exit(2)
}
