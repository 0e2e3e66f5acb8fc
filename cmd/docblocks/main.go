// Command docblocks converts article files to block HTML from the shell.
package main

import (
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("docblocks"),
		kong.Description("Convert Markdown articles to block HTML."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&Global{Out: os.Stdout}))
}
