package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/spf13/cobra"
)

type head struct {
	Hash    string           `json:"hash"`
	Slot    uint64           `json:"slot"`
	Density float64          `json:"density"`
	Window  consensus.Window `json:"window"`
	Pool    int              `json:"pool"`
}

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Print the canonical head of the chain",
	Run:   headRun,
}

func init() {
	rootCmd.AddCommand(headCmd)
	headCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func headRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/head", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var hd head
	if err := decoder.Decode(&hd); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Head: ", hd.Hash)
	fmt.Println("Slot: ", hd.Slot)
	fmt.Println("Density: ", hd.Density)
	fmt.Println("Window: ", hd.Window.Size)
	fmt.Println("Pool: ", hd.Pool)
}
