package main

import "github.com/comitanigiacomo/twelve-week-sync/cmd/twelveweek/root"

func main() {
	root.Execute()
}
