package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var blockID string

type blockStatus struct {
	Hash    string  `json:"hash"`
	Status  string  `json:"status"`
	Density float64 `json:"density"`
}

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Print the status and density for a block",
	Run:   densityRun,
}

func init() {
	rootCmd.AddCommand(densityCmd)
	densityCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	densityCmd.Flags().StringVarP(&blockID, "block", "b", "", "Id of the block.")
}

func densityRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/block/status/%s", url, blockID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var bs blockStatus
	if err := decoder.Decode(&bs); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Block: ", bs.Hash)
	fmt.Println("Status: ", bs.Status)
	fmt.Println("Density: ", bs.Density)
}
