package main

import "rentalsync-bridge/cmd"

func main() {
	cmd.Execute()
}
