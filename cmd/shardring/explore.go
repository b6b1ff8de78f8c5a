package main

import (
	"fmt"

	"github.com/eiannone/keyboard"
	"github.com/spf13/cobra"
)

func runExplore(cmd *cobra.Command, args []string) error {
	ring, err := buildRing(realNodes)
	if err != nil {
		return err
	}

	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	defer keyboard.Close()

	var (
		out = cmd.OutOrStdout()
		key []rune
	)
	fmt.Fprintf(out, "Type a key. [enter] keep line, [esc] quit\n\n")
	printOwner(cmd, ring.Owner, key)

	for {
		char, k, err := keyboard.GetKey()
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		var done bool
		if key, done = editKey(key, char, k); done {
			fmt.Fprintln(out)
			return nil
		}
		if k == keyboard.KeyEnter {
			fmt.Fprintln(out)
		}

		printOwner(cmd, ring.Owner, key)
	}
}

// editKey applies one keystroke to key and reports whether exploring should stop.
// Enter starts a new key.
func editKey(key []rune, char rune, k keyboard.Key) ([]rune, bool) {
	switch k {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return key, true
	case keyboard.KeyEnter:
		return key[:0], false
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		if len(key) > 0 {
			return key[:len(key)-1], false
		}
		return key, false
	case keyboard.KeySpace:
		return append(key, ' '), false
	}

	if char != 0 {
		return append(key, char), false
	}
	return key, false
}

// printOwner rewrites the current terminal line with the key and its owner.
func printOwner(cmd *cobra.Command, owner func(string) (int32, int), key []rune) {
	var position, node = owner(string(key))
	fmt.Fprintf(cmd.OutOrStdout(), "\r\033[K%q -> node %d (position %d)", string(key), node, position)
}
