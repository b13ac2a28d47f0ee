// Package main is the entry point of the account-core server.
package main

import (
	"account-core/internal"
)

func main() {
	internal.Init()
}
