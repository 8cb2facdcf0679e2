package main

import "github.com/bookstack-tools/booksync/cmd/booksync/cmd"

func main() {
	cmd.Execute()
}
