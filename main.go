package main

import "github.com/khrees2412/levelup/cmd"

func main() {
	cmd.Execute()
}
