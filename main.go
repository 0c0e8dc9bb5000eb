package main

import "glpi-notify/cmd"

func main() {
	cmd.Execute()
}
