// Command dealctl реализует консольный клиент API статистики сделок.
//
// Примеры:
//
//	dealctl view deal42
//	dealctl like deal42 --token $DEALHUB_TOKEN
//	dealctl stats deal42 --output json
//	dealctl check-name < names.txt
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(newRootCmd(os.Stdin, os.Stdout).Execute())
}
