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

// Package main implements the emailparser command line tool that
// extracts communication evidence from e-mail and contact containers.
//     create         Create an empty case store
//     scan           Extract evidence from container files into a case store
//     element        Read extracted evidence (get, select, all, search)
//     accounts       List the resolved communication accounts
//     relationships  List the edges between communication accounts
//
// Usage
//
// Create a case store
//     emailparser create case.emailparser
// Scan a Thunderbird profile and an exported mailbox
//     emailparser scan case.emailparser /evidence/profile/Mail '/evidence/export/*.pst'
// Fetch extracted evidence
//     emailparser element select email-message case.emailparser > messages.json
//     emailparser element search alice@example.com case.emailparser
// Inspect the communication graph
//     emailparser accounts case.emailparser
//     emailparser relationships case.emailparser
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/emailparser/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "emailparser",
		Short: "Extract communication evidence from e-mail and contact containers",
	}
	rootCmd.AddCommand(cmd.Create(), cmd.Scan(), cmd.Element(), cmd.Accounts(), cmd.Relationships())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
