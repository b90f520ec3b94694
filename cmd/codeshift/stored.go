package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var storedCmd = &cobra.Command{
	Use:   "stored <kuzu-dir>",
	Short: "List the tree keys persisted in a KuzuDB directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStored,
}

// keyLister is implemented by stores that can enumerate their keys.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

func runStored(cmd *cobra.Command, args []string) error {
	store, err := openTreeStore(args[0])
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	kl, ok := store.(keyLister)
	if !ok {
		return fmt.Errorf("store at %s cannot list keys", args[0])
	}
	keys, err := kl.Keys(cmd.Context())
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}
