// Command biblio manages a personal library catalog.
package main

import "github.com/mesh-intelligence/bibliotheca/internal/cli"

func main() {
	cli.Execute()
}
