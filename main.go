package main

import "featuredrop/cmd"

func main() {
	cmd.Execute()
}
