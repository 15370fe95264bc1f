package main

import "github.com/frahmantamala/collection-management/cmd"

func main() {
	cmd.Execute()
}
