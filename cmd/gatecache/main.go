package main

import (
	"github.com/starshine-sys/gatecache/cmd"
	"github.com/starshine-sys/gatecache/common/log"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatal(err)
	}
}
