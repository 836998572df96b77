// Command kbm runs the directory service, its HTTP gateway, and maintenance
// tasks. See "kbm --help".
package main

import (
	"os"

	"github.com/kbmproject/kbm-backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
