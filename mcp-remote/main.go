// Command mcp-remote bridges a stdio-only MCP client to a remote MCP server
// reachable over streamable HTTP or legacy SSE, with bearer / custom-header /
// OAuth2 client-credentials authentication.
package main

import (
	"log"
	"os"

	_ "github.com/viant/scy/kms/blowfish"
	"github.com/wwardha/mcp-remote/bridge"
)

func main() {
	if err := bridge.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
