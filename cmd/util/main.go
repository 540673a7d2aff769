package main

import (
	"github.com/dposchain/node/cmd/util/cmd"
)

func main() {
	cmd.Execute()
}
