package main

import "user-import/cmd"

func main() {
	cmd.Execute()
}
