package main

import "github.com/KaramelBytes/h1bcount/cmd"

func main() {
	cmd.Execute()
}
