// Command foodgram runs the recipe API server and its maintenance
// commands.
//
//	foodgram                          serve with defaults
//	foodgram serve --config app.yaml  serve with a YAML config
//	foodgram shopping-list <user-id>  print a user's merged shopping list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
