package main

import "logdeck/cli"

func main() {
	cli.Execute()
}
