package main

import "github.com/dmitrijs2005/adminauth/cmd/server/cmd"

func main() {
	cmd.Execute()
}
