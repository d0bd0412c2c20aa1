package main

import (
	"log"

	"github.com/rhysr01/jobping/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
