package main

import "proxy-manager/cmd"

func main() {
	cmd.Execute()
}
