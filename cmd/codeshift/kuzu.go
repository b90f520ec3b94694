//go:build cgo

package main

import "github.com/dusk-indust/codeshift/internal/graph"

func openTreeStore(dir string) (graph.Store, error) {
	s, err := graph.NewKuzuFileStore(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}
