// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-14
// Last Modified: 2026-08-14

package main

import (
	"github.com/similigh/cardvault/cmd/cardvault/commands"
)

func main() {
	commands.Execute()
}
