package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "bullbear"}

	root.AddCommand(serveCMD(), migrateCMD(), debateCMD(), researchCMD(), searchCMD(), ingestCMD())
	_ = root.Execute()
}
