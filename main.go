package main

import "github.com/sap8899/reportly/cmd"

func main() {
	cmd.Execute()
}
