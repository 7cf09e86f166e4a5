package main

import "github.com/suntrap/buildboard/cmd/buildboard/subcmd"

func main() {
	subcmd.Execute()
}
