package main

import "github.com/ogulcanaydogan/aws-spend-reporter/internal/cli"

func main() {
	cli.Execute()
}
