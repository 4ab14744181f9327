//go:build mage

package main

import (
	"fmt"
	"strconv"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed on the headless backend until interrupted.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "anima.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed for the given number of frames.
func (Run) Frames(n int) error {
	fmt.Printf("Run testbed for %d frames...\n", n)
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "anima.toml", "-frames", strconv.Itoa(n)), withStream()); err != nil {
		return err
	}
	return nil
}
