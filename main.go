package main

import "github.com/fakeyudi/notetime/cmd"

func main() {
	cmd.Execute()
}
