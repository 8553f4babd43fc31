package main

import "github.com/dirdkv/dird/cmd"

func main() {
	cmd.Execute()
}
