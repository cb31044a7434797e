package main

import "github.com/VoxDroid/dopesheet/cmd"

func main() {
	cmd.Execute()
}
