package main

import "github.com/navicore/zim-hide/internal/cli"

func main() {
	cli.Execute()
}
