package main

import "github.com/querylab/retrievalcfg/internal/cli"

func main() {
	cli.Execute()
}
