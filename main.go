package main

import "github.com/frahmantamala/expensehub/cmd"

func main() {
	cmd.Execute()
}
