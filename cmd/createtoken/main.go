package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lukashondrich/open-workinghours-sub006/security"
)

func main() {
	secret := os.Getenv("SIGNING_SECRET")
	if secret == "" {
		log.Fatal("SIGNING_SECRET is required")
	}

	token, err := security.CreateDeviceToken(&security.DeviceIdentity{
		DeviceID: "device",
		UserName: "device",
	}, secret, 3600)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
