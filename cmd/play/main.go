// Command play generates a game from the terminal and saves the resulting
// document to a file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mosgamer/promptplay/internal/config"
	"github.com/mosgamer/promptplay/internal/consumer"
)

func main() {
	cfg := config.Load()

	server := flag.String("server", "http://localhost:8080", "promptplay server base URL")
	prompt := flag.String("prompt", "", "game description (required)")
	title := flag.String("title", "", "optional title for the generated game")
	output := flag.String("o", "game.html", "output file for the generated document")
	timeout := flag.Duration("timeout", cfg.StreamTimeout, "overall generation timeout (default from STREAM_TIMEOUT)")
	flag.Parse()

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: play -prompt \"a pong game\" [-title T] [-o game.html]")
		os.Exit(2)
	}

	client := consumer.NewClient(*server, consumer.WithTimeout(*timeout))

	var lastPhase string
	result, err := client.Generate(context.Background(), *prompt, *title, func(u consumer.Update) {
		if u.Phase != "" && u.Phase != lastPhase {
			lastPhase = u.Phase
			fmt.Printf("%s (%d lines)\n", u.Phase, u.Lines)
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, consumer.ErrTimeout):
			fmt.Fprintln(os.Stderr, "generation timed out")
		default:
			fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		}
		os.Exit(1)
	}

	if err := os.WriteFile(*output, []byte(result.Document), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("saved %s (artifact %s, play at %s/artifacts/%s/play)\n", *output, result.ID, *server, result.ID)
}
