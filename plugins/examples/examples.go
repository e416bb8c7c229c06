// Command examples is built with -buildmode=plugin and listed under
// "plugins" in the configuration to add the lpwd builtin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

type PwdPlugin struct{}

func (p *PwdPlugin) Name() string {
	return "lpwd"
}

func (p *PwdPlugin) Execute(args []string, out io.Writer) error {
	if len(args) > 0 {
		return errors.New("lpwd takes no arguments")
	}
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, dir)
	return err
}

var Plugin PwdPlugin

func main() {}
