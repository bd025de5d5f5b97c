package main

import (
	"playlistwatch/cmd/watcher-cli/cmd"
)

func main() {
	cmd.Execute()
}
