package main

import (
	"os"

	"github.com/notedrop/notedrop-server/notedropservice"
)

func main() {
	if err := notedropservice.Run(); err != nil {
		os.Exit(1)
	}
}
