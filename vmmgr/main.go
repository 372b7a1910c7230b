// Command vmmgr translates a file of logical addresses and reports the page
// fault and TLB hit rates.
package main

import "github.com/sarchlab/vmmgr/vmmgr/cmd"

func main() {
	cmd.Execute()
}
