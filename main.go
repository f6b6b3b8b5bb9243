package main

import (
	"os"

	"github.com/julio4/light-evm/cli"
)

// light-evm -b 0x600560060160020200
// light-evm run -b 0x600560060160020200 --step=false
// light-evm disasm -b 0x600560060160020200
// light-evm serve --addr :8080

func main() {
	os.Exit(cli.Execute())
}
