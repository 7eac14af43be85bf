package main

import "github.com/mvp-joe/wayfind/internal/cli"

func main() {
	cli.Execute()
}
