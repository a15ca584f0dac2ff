package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type produced struct {
	Status  string `json:"status"`
	Hash    string `json:"hash"`
	Slot    uint64 `json:"slot"`
	Records int    `json:"records"`
}

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Ask the node to produce the next block",
	Run:   produceRun,
}

func init() {
	rootCmd.AddCommand(produceCmd)
	produceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:9080", "Url of the node's private API.")
}

func produceRun(cmd *cobra.Command, args []string) {
	resp, err := http.Post(fmt.Sprintf("%s/v1/node/block/produce", url), "application/json", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var prd produced
	if err := decoder.Decode(&prd); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Status: ", prd.Status)
	fmt.Println("Block: ", prd.Hash)
	fmt.Println("Slot: ", prd.Slot)
	fmt.Println("Records: ", prd.Records)
}
