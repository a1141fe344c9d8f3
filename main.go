package main

import "github.com/tantalor93/resolvebench/cmd"

func main() {
	cmd.Execute()
}
