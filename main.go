package main

import "github.com/Tiliavir/hatena-sync/cmd"

func main() {
	cmd.Execute()
}
