package main

import "titleshop/cmd/tshop/root"

func main() {
	root.Execute()
}
