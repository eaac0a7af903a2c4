package main

import "cashburn/cmd"

func main() {
	cmd.Execute()
}
