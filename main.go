package main

import "github.com/tayloree/skinrec/cmd"

func main() {
	cmd.Execute()
}
