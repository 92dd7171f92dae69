package main

import (
	"os"
)

func main() {
	os.Exit(execute(defaultEnvironment(), os.Args[1:]))
}
