// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/emailparser/casestore"
)

// Create is the emailparser create commandline subcommand
func Create() *cobra.Command {
	return &cobra.Command{
		Use:   "create <store>",
		Short: "Create an empty case store",
		Args:  cobra.ExactArgs(1), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := casestore.New(args[0])
			if err != nil {
				return err
			}
			return store.Close()
		},
	}
}

// Element is the emailparser element commandline subcommand
func Element() *cobra.Command {
	elementCommand := &cobra.Command{
		Use:   "element",
		Short: "Read extracted evidence from the case store",
	}
	elementCommand.AddCommand(getCommand(), selectCommand(), allCommand(), searchCommand())
	return elementCommand
}

// Accounts is the emailparser accounts commandline subcommand
func Accounts() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts <store>",
		Short: "List the resolved communication accounts",
		Args:  requireOneStore,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := casestore.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()
			accounts, err := store.Accounts()
			if err != nil {
				return err
			}
			b, _ := json.Marshal(accounts)
			fmt.Printf("%s\n", b)
			return nil
		},
	}
}

// Relationships is the emailparser relationships commandline subcommand
func Relationships() *cobra.Command {
	return &cobra.Command{
		Use:   "relationships <store>",
		Short: "List the edges between communication accounts",
		Args:  requireOneStore,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := casestore.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()
			relationships, err := store.Relationships()
			if err != nil {
				return err
			}
			b, _ := json.Marshal(relationships)
			fmt.Printf("%s\n", b)
			return nil
		},
	}
}

func requireOneStore(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("requires exactly one store")
	}
	for _, arg := range args {
		if _, err := os.Stat(arg); os.IsNotExist(err) {
			return errors.Wrap(os.ErrNotExist, arg)
		}
	}
	return nil
}
