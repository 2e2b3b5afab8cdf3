package main

import (
	"fmt"
	"os"

	"github.com/EsotericSoftware/wildcard/cmd/wildcard/commands"
)

func main() {
	err := commands.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
