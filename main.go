package main

import "github.com/Alturino/shopping-cart/cmd"

func main() {
	cmd.Start()
}
