package main

import (
	"context"

	"postscrape/cmd/postscrape/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
