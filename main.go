package main

import "github.com/naka-gawa/trendy-repos/cmd"

func main() {
	cmd.Execute()
}
