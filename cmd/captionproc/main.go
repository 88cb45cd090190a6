package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.Red("错误: %v", err)
		os.Exit(1)
	}
}
