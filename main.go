package main

import "github.com/adportal/adportal/cmd"

func main() {
	cmd.Execute()
}
