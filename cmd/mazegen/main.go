// Command mazegen generates maze text files and checks existing ones.
//
//	mazegen random --width 8 --height 6 --seed 42 > maze.txt
//	mazegen validate maze.txt configs/*.yaml
//	mazegen stats maze.txt
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
