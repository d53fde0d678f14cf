package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"oxide/oxide"
)

func main() {
	vm := oxide.NewVM()
	if e := vm.LoadBuiltins(); e != nil {
		panic(e)
	}
	srcName := "examples/basic.ox"
	if len(os.Args) > 1 {
		srcName = os.Args[1]
	}
	source, err := ioutil.ReadFile(srcName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %s\n", err)
		os.Exit(1)
	}

	vmerr := oxide.RunScript(vm, srcName, string(source))
	if vmerr != nil {
		if oxErr, ok := vmerr.(*oxide.OxideError); ok {
			fmt.Fprintln(os.Stderr, oxErr.ShowSource(string(source)))
		} else {
			fmt.Fprintln(os.Stderr, vmerr.Error())
		}
		os.Exit(1)
	}
}
