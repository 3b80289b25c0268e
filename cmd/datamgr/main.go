package main

import "github.com/openenergyoutlook/datamgr/cmd/datamgr/cmd"

func main() {
	cmd.Execute()
}
