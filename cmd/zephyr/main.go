package main

import "github.com/shaharia-lab/zephyr/internal/cli"

func main() {
	cli.Execute()
}
